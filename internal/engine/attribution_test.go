package engine

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aimsmarine/aims-diagnostics/internal/models"
)

func features(r models.RankedAttribution) []string {
	out := make([]string, 0, len(r))
	for _, e := range r {
		out = append(out, e.Feature)
	}
	return out
}

func TestRankOrdersByMagnitude(t *testing.T) {
	ranked, err := Rank([]models.Attribution{
		{Feature: "D", Value: -0.1},
		{Feature: "B", Value: -0.3},
		{Feature: "A", Value: 0.5},
		{Feature: "C", Value: 0.2},
	}, 0)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if diff := cmp.Diff([]string{"A", "B", "C", "D"}, features(ranked)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A", "C"}, features(ranked.Toward())); diff != "" {
		t.Fatalf("toward bucket mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"B", "D"}, features(ranked.Away())); diff != "" {
		t.Fatalf("away bucket mismatch (-want +got):\n%s", diff)
	}
	if ranked[1].Magnitude != 0.3 || ranked[1].Value != -0.3 {
		t.Fatalf("unexpected entry %+v", ranked[1])
	}
}

func TestRankKeepsInputOrderOnTies(t *testing.T) {
	ranked, err := Rank([]models.Attribution{
		{Feature: "X", Value: 0.2},
		{Feature: "Y", Value: -0.2},
		{Feature: "Z", Value: 0.2},
	}, 0)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if diff := cmp.Diff([]string{"X", "Y", "Z"}, features(ranked)); diff != "" {
		t.Fatalf("tie order mismatch (-want +got):\n%s", diff)
	}
}

func TestRankZeroValueCountsTowardFault(t *testing.T) {
	ranked, err := Rank([]models.Attribution{{Feature: "Oil_Temp", Value: 0}}, 0)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if ranked[0].Direction != models.TowardFault {
		t.Fatalf("expected zero to be toward fault, got %s", ranked[0].Direction)
	}
}

func TestRankTruncatesToTopK(t *testing.T) {
	attrs := make([]models.Attribution, 0, len(models.SensorFields))
	for i, f := range models.SensorFields {
		attrs = append(attrs, models.Attribution{Feature: string(f), Value: float64(i)})
	}
	ranked, err := Rank(attrs, DefaultTopK)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(ranked) != DefaultTopK {
		t.Fatalf("expected %d entries, got %d", DefaultTopK, len(ranked))
	}
	if ranked[0].Feature != string(models.FieldCylinder4ExhaustTmp) {
		t.Fatalf("expected largest attribution first, got %s", ranked[0].Feature)
	}
}

func TestRankEmptyIsNoData(t *testing.T) {
	if _, err := Rank(nil, 8); !errors.Is(err, ErrNoAttributions) {
		t.Fatalf("expected ErrNoAttributions, got %v", err)
	}
	if _, err := RankMap(map[string]float64{}, 8); !errors.Is(err, ErrNoAttributions) {
		t.Fatalf("expected ErrNoAttributions for empty map, got %v", err)
	}
}

func TestRankMapIsDeterministic(t *testing.T) {
	values := map[string]float64{"b": 0.1, "a": -0.1, "c": 0.4}
	first, err := RankMap(values, 0)
	if err != nil {
		t.Fatalf("rank map: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, _ := RankMap(values, 0)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("ranking changed between calls (-first +again):\n%s", diff)
		}
	}
	if diff := cmp.Diff([]string{"c", "a", "b"}, features(first)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}
