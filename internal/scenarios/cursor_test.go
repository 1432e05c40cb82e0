package scenarios

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aimsmarine/aims-diagnostics/internal/models"
)

func TestDefaultCatalogShape(t *testing.T) {
	c := DefaultCatalog()
	want := map[models.Category]int{
		models.CategoryNormal:   3,
		models.CategoryMinor:    4,
		models.CategoryCritical: 4,
		models.CategoryCustom:   0,
	}
	for cat, n := range want {
		if got := c.Count(cat); got != n {
			t.Fatalf("%s: expected %d presets, got %d", cat, n, got)
		}
	}
	for _, cat := range Categories {
		for _, p := range c.Presets(cat) {
			if p.Category != cat {
				t.Fatalf("%s stamped with %s", p.Name, p.Category)
			}
			if len(p.Values) != len(models.SensorFields) {
				t.Fatalf("%s has %d fields", p.Name, len(p.Values))
			}
		}
	}
}

func TestCatalogPresetValues(t *testing.T) {
	c := DefaultCatalog()
	turbo, ok := c.Find("Turbocharger Fault")
	if !ok {
		t.Fatalf("turbocharger preset missing")
	}
	for _, f := range models.ExhaustTempFields {
		if turbo.Values.Get(f) != 550 {
			t.Fatalf("%s: expected 550, got %v", f, turbo.Values.Get(f))
		}
	}
	if turbo.Values.Get(models.FieldAirPressure) != 2.0 {
		t.Fatalf("expected air pressure 2.0, got %v", turbo.Values.Get(models.FieldAirPressure))
	}
	if turbo.Values.Get(models.FieldShaftRPM) != 950 {
		t.Fatalf("expected base shaft rpm, got %v", turbo.Values.Get(models.FieldShaftRPM))
	}
}

func TestCatalogReturnsCopies(t *testing.T) {
	c := DefaultCatalog()
	p, _ := c.At(models.CategoryNormal, 1)
	p.Values[models.FieldShaftRPM] = 1
	again, _ := c.At(models.CategoryNormal, 1)
	if again.Values.Get(models.FieldShaftRPM) != 950 {
		t.Fatalf("catalog mutated through returned preset")
	}
}

func TestCursorCyclesIndependently(t *testing.T) {
	cur := NewCursor(DefaultCatalog())

	var visited []int
	for i := 0; i < 4; i++ {
		if _, err := cur.Advance(models.CategoryNormal); err != nil {
			t.Fatalf("advance: %v", err)
		}
		visited = append(visited, cur.Index(models.CategoryNormal))
	}
	if diff := cmp.Diff([]int{1, 2, 0, 1}, visited); diff != "" {
		t.Fatalf("visit order mismatch (-want +got):\n%s", diff)
	}
	if cur.Index(models.CategoryMinor) != 0 || cur.Index(models.CategoryCritical) != 0 {
		t.Fatalf("other categories moved")
	}

	p, err := cur.Advance(models.CategoryCritical)
	if err != nil {
		t.Fatalf("advance critical: %v", err)
	}
	if p.Name != "Turbocharger Fault" {
		t.Fatalf("expected Turbocharger Fault, got %s", p.Name)
	}
}

func TestCursorRejectsCustom(t *testing.T) {
	cur := NewCursor(DefaultCatalog())
	for _, cat := range []models.Category{models.CategoryCustom, "bogus"} {
		if _, err := cur.Advance(cat); !errors.Is(err, ErrNotCyclable) {
			t.Fatalf("%s: expected ErrNotCyclable, got %v", cat, err)
		}
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := NewSession(DefaultCatalog())

	reading, source := s.Snapshot()
	if source.Name() != InitialPreset || source.IsCustom() {
		t.Fatalf("unexpected initial source %+v", source)
	}
	if reading.Get(models.FieldShaftRPM) != 950 {
		t.Fatalf("unexpected initial reading")
	}

	if err := s.Edit("Oil_Temp", 99); err != nil {
		t.Fatalf("edit: %v", err)
	}
	reading, source = s.Snapshot()
	if !source.IsCustom() || reading.Get(models.FieldOilTemp) != 99 {
		t.Fatalf("edit did not switch to custom: %+v %v", source, reading.Get(models.FieldOilTemp))
	}

	p, err := s.Load(models.CategoryMinor)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	reading, source = s.Snapshot()
	if source.IsCustom() || source.Name() != p.Name || p.Name != "Cooling Issue" {
		t.Fatalf("load did not leave custom: %+v (%s)", source, p.Name)
	}
	if reading.Get(models.FieldOilTemp) != 92 {
		t.Fatalf("expected preset oil temp 92, got %v", reading.Get(models.FieldOilTemp))
	}

	if err := s.Edit("Bogus", 1); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if _, err := s.Load(models.CategoryCustom); !errors.Is(err, ErrNotCyclable) {
		t.Fatalf("expected custom to be rejected, got %v", err)
	}
	if _, source = s.Snapshot(); source.IsCustom() {
		t.Fatalf("failed load must not change the source")
	}
}

func TestSessionSnapshotIsolation(t *testing.T) {
	s := NewSession(DefaultCatalog())
	reading, _ := s.Snapshot()
	reading[models.FieldOilTemp] = 500
	again, _ := s.Snapshot()
	if again.Get(models.FieldOilTemp) != 75 {
		t.Fatalf("session mutated through snapshot")
	}
}
