package extract

import (
	"testing"
	"time"
)

var testNow = time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

func TestExtractCalories(t *testing.T) {
	obs, ok := Extract("I ate 500 calories today", testNow)
	if !ok {
		t.Fatal("expected an observation")
	}
	if obs.Kind != "calories" {
		t.Errorf("expected calories, got %s", obs.Kind)
	}
	if obs.Value != 500 {
		t.Errorf("expected 500, got %v", obs.Value)
	}
	if obs.Date != "2024-03-15" {
		t.Errorf("expected today's date, got %s", obs.Date)
	}
}

func TestExtractKcal(t *testing.T) {
	obs, ok := Extract("roughly 350 kcal for breakfast", testNow)
	if !ok {
		t.Fatal("expected an observation")
	}
	if obs.Kind != "calories" || obs.Value != 350 {
		t.Errorf("got %s=%v", obs.Kind, obs.Value)
	}
}

func TestExtractMinutes(t *testing.T) {
	obs, ok := Extract("workout for 45 minutes", testNow)
	if !ok {
		t.Fatal("expected an observation")
	}
	if obs.Kind != "duration" {
		t.Errorf("expected duration, got %s", obs.Kind)
	}
	if obs.Value != 45 {
		t.Errorf("expected 45 minutes, got %v", obs.Value)
	}
}

func TestExtractHoursNormalizedToMinutes(t *testing.T) {
	obs, ok := Extract("did yoga for 1.5 hours", testNow)
	if !ok {
		t.Fatal("expected an observation")
	}
	if obs.Kind != "duration" || obs.Value != 90 {
		t.Errorf("expected 90 minutes, got %s=%v", obs.Kind, obs.Value)
	}
}

func TestExtractNoQuantity(t *testing.T) {
	if obs, ok := Extract("hello there", testNow); ok {
		t.Fatalf("expected no observation, got %+v", obs)
	}
}

// An utterance with both quantities resolves via the documented precedence
// rule: calories wins. The input is genuinely ambiguous; this pins the
// contract rather than discovering an invariant.
func TestExtractCaloriesWinOverDuration(t *testing.T) {
	obs, ok := Extract("had 300 calories after a 90 minute run", testNow)
	if !ok {
		t.Fatal("expected an observation")
	}
	if obs.Kind != "calories" {
		t.Errorf("expected calories to take precedence, got %s", obs.Kind)
	}
	if obs.Value != 300 {
		t.Errorf("expected 300, got %v", obs.Value)
	}
}

func TestExtractYesterday(t *testing.T) {
	obs, ok := Extract("I did gym for 45 minutes yesterday", testNow)
	if !ok {
		t.Fatal("expected an observation")
	}
	if obs.Date != "2024-03-14" {
		t.Errorf("expected yesterday's date, got %s", obs.Date)
	}
}

func TestExtractMinutesWinOverHours(t *testing.T) {
	obs, ok := Extract("ran 30 minutes out of the 2 hour session", testNow)
	if !ok {
		t.Fatal("expected an observation")
	}
	if obs.Value != 30 {
		t.Errorf("expected explicit minutes to win, got %v", obs.Value)
	}
}

func TestExtractKeepsSourceText(t *testing.T) {
	obs, ok := Extract("bench press for 40 mins", testNow)
	if !ok {
		t.Fatal("expected an observation")
	}
	if obs.SourceText != "bench press for 40 mins" {
		t.Errorf("source text not preserved: %q", obs.SourceText)
	}
}
