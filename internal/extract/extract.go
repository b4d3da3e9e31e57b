// Package extract parses free-text utterances into structured habit
// observations. It is a pure function over the utterance and a clock; a
// miss is a normal outcome, not an error.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rcliao/habit-agent/internal/model"
)

var (
	caloriesRe = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:calories|calorie|kcal)\b`)
	minutesRe  = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:minutes|minute|mins|min)\b`)
	hoursRe    = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:hours|hour|hrs|hr)\b`)
)

// Extract parses zero or one observation out of an utterance. Calories take
// precedence when both a calorie and a duration quantity appear. Durations
// are normalized to minutes. The returned observation has no UserID or ID;
// the caller fills ownership before persisting.
func Extract(utterance string, now time.Time) (*model.Observation, bool) {
	date := resolveDate(utterance, now)

	if m := caloriesRe.FindStringSubmatch(utterance); m != nil {
		v, ok := parsePositive(m[1])
		if !ok {
			return nil, false
		}
		return &model.Observation{
			Date:       date,
			Kind:       model.KindCalories,
			Value:      v,
			SourceText: utterance,
		}, true
	}

	if minutes, ok := extractMinutes(utterance); ok {
		return &model.Observation{
			Date:       date,
			Kind:       model.KindDuration,
			Value:      minutes,
			SourceText: utterance,
		}, true
	}

	return nil, false
}

// extractMinutes finds a duration mention and normalizes it to minutes.
// An explicit minute quantity wins over an hour quantity when both appear.
func extractMinutes(utterance string) (float64, bool) {
	if m := minutesRe.FindStringSubmatch(utterance); m != nil {
		return parsePositive(m[1])
	}
	if m := hoursRe.FindStringSubmatch(utterance); m != nil {
		v, ok := parsePositive(m[1])
		if !ok {
			return 0, false
		}
		return v * 60, true
	}
	return 0, false
}

// resolveDate applies the minimal deterministic date rule: "yesterday"
// resolves to the previous calendar day, everything else to now's date.
// Month and day-name resolution is deliberately not handled here.
func resolveDate(utterance string, now time.Time) string {
	if strings.Contains(strings.ToLower(utterance), "yesterday") {
		return model.DateOf(now.AddDate(0, 0, -1))
	}
	return model.DateOf(now)
}

func parsePositive(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
