package scenarios

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aimsmarine/aims-diagnostics/internal/models"
)

// ErrNotCyclable is returned for categories that have no presets, including custom.
var ErrNotCyclable = errors.New("category cannot be cycled")

// ErrUnknownField is returned when editing a field outside the sensor set.
var ErrUnknownField = errors.New("unknown sensor field")

// Cursor keeps an independent position per category and wraps around.
type Cursor struct {
	catalog *Catalog
	index   map[models.Category]int
}

// NewCursor starts every category at index 0.
func NewCursor(catalog *Catalog) *Cursor {
	c := &Cursor{catalog: catalog, index: make(map[models.Category]int)}
	for _, cat := range Categories {
		c.index[cat] = 0
	}
	return c
}

// Advance moves the category to its next preset and returns it.
func (c *Cursor) Advance(cat models.Category) (models.ScenarioPreset, error) {
	n := c.catalog.Count(cat)
	if n == 0 {
		return models.ScenarioPreset{}, fmt.Errorf("%w: %q", ErrNotCyclable, cat)
	}
	next := (c.index[cat] + 1) % n
	c.index[cat] = next
	p, _ := c.catalog.At(cat, next)
	return p, nil
}

// Index returns the current position for a category.
func (c *Cursor) Index(cat models.Category) int {
	return c.index[cat]
}

// Session is the input form state: the current reading, where it came from and the
// cursor used by the preset buttons.
type Session struct {
	mu      sync.RWMutex
	cursor  *Cursor
	reading models.SensorReading
	source  models.ReadingSource
}

// NewSession starts on the cruise preset.
func NewSession(catalog *Catalog) *Session {
	s := &Session{
		cursor: NewCursor(catalog),
		source: models.PresetSource(InitialPreset),
	}
	if p, ok := catalog.Find(InitialPreset); ok {
		s.reading = p.Values
	} else {
		s.reading = baseNormal()
	}
	return s
}

// Load cycles the category and replaces the reading with the selected preset.
func (s *Session) Load(cat models.Category) (models.ScenarioPreset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.cursor.Advance(cat)
	if err != nil {
		return models.ScenarioPreset{}, err
	}
	s.reading = p.Values.Clone()
	s.source = models.PresetSource(p.Name)
	return p, nil
}

// Edit sets a single field and marks the reading as custom.
func (s *Session) Edit(field string, value float64) error {
	f, ok := models.ParseSensorField(field)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reading = s.reading.With(f, value)
	s.source = models.CustomSource()
	return nil
}

// Replace swaps in a whole hand-entered reading.
func (s *Session) Replace(reading models.SensorReading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reading = reading.Clone()
	s.source = models.CustomSource()
}

// Snapshot returns a copy of the current reading and its source.
func (s *Session) Snapshot() (models.SensorReading, models.ReadingSource) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reading.Clone(), s.source
}

// CursorIndex returns the current preset index for a category.
func (s *Session) CursorIndex(cat models.Category) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor.Index(cat)
}
