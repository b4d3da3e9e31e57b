package store

import (
	"context"
	"errors"
	"testing"

	"github.com/rcliao/habit-agent/internal/model"
)

func TestAppendObservationValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	cases := []AppendObservationParams{
		{UserID: "", Date: "2024-01-01", Kind: model.KindCalories, Value: 100},
		{UserID: "alice", Date: "2024-01-01", Kind: "steps", Value: 100},
		{UserID: "alice", Date: "2024-01-01", Kind: model.KindDuration, Value: -30},
		{UserID: "alice", Date: "2024-01-01", Kind: model.KindDuration, Value: 0},
		{UserID: "alice", Date: "January 1st", Kind: model.KindCalories, Value: 100},
	}
	for i, p := range cases {
		if _, err := s.AppendObservation(ctx, p); !errors.Is(err, model.ErrValidation) {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestListObservationsByKind(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.AppendObservation(ctx, AppendObservationParams{UserID: "alice", Date: "2024-01-02", Kind: model.KindCalories, Value: 300})
	s.AppendObservation(ctx, AppendObservationParams{UserID: "alice", Date: "2024-01-01", Kind: model.KindDuration, Value: 45})
	s.AppendObservation(ctx, AppendObservationParams{UserID: "alice", Date: "2024-01-03", Kind: model.KindCalories, Value: 200})
	s.AppendObservation(ctx, AppendObservationParams{UserID: "bob", Date: "2024-01-01", Kind: model.KindCalories, Value: 999})

	obs, err := s.ListObservations(ctx, ObservationParams{UserID: "alice", Kind: model.KindCalories})
	if err != nil {
		t.Fatal(err)
	}
	if len(obs) != 2 {
		t.Fatalf("expected 2 calorie observations, got %d", len(obs))
	}
	if obs[0].Date != "2024-01-02" || obs[1].Date != "2024-01-03" {
		t.Errorf("expected ascending dates, got %s then %s", obs[0].Date, obs[1].Date)
	}
}

func TestListObservationsSince(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.AppendObservation(ctx, AppendObservationParams{UserID: "alice", Date: "2023-12-01", Kind: model.KindDuration, Value: 30})
	s.AppendObservation(ctx, AppendObservationParams{UserID: "alice", Date: "2024-01-10", Kind: model.KindDuration, Value: 60})

	obs, err := s.ListObservations(ctx, ObservationParams{UserID: "alice", Since: "2024-01-01"})
	if err != nil {
		t.Fatal(err)
	}
	if len(obs) != 1 || obs[0].Date != "2024-01-10" {
		t.Errorf("retention floor not applied: %+v", obs)
	}
}

func TestPruneObservations(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.AppendObservation(ctx, AppendObservationParams{UserID: "alice", Date: "2023-12-01", Kind: model.KindDuration, Value: 30})
	s.AppendObservation(ctx, AppendObservationParams{UserID: "bob", Date: "2023-11-15", Kind: model.KindCalories, Value: 400})
	s.AppendObservation(ctx, AppendObservationParams{UserID: "alice", Date: "2024-01-10", Kind: model.KindDuration, Value: 60})

	n, err := s.PruneObservations(ctx, "2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 pruned, got %d", n)
	}

	obs, _ := s.ListObservations(ctx, ObservationParams{UserID: "alice"})
	if len(obs) != 1 || obs[0].Date != "2024-01-10" {
		t.Errorf("expected only the recent observation to remain: %+v", obs)
	}

	if _, err := s.PruneObservations(ctx, "last month"); !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected validation error for a bad date, got %v", err)
	}
}
