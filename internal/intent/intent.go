// Package intent classifies utterances into the triggers the orchestrator
// routes on. Classification is a replaceable capability: the memory core
// never depends on which Classifier implementation is active.
package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// Intent carries the trigger flags for one utterance.
type Intent struct {
	Gym   bool
	Food  bool
	Graph bool
	Timer bool
}

// Classifier decides which triggers an utterance matches.
type Classifier interface {
	Classify(text string) Intent
}

// Keyword is the default keyword-matching classifier. An LLM-backed
// classifier can be swapped in behind the same interface.
type Keyword struct{}

var (
	gymWords = []string{
		"gym", "workout", "exercise", "fitness", "training", "lifting",
		"cardio", "squats", "weights", "bench press", "deadlift", "run", "yoga",
	}
	foodWords = []string{
		"ate", "eating", "snack", "meal", "breakfast", "lunch", "dinner",
		"brunch", "calories", "kcal",
	}
	chartWords = []string{"graph", "chart", "plot", "visualize", "trend"}
	timerWords = []string{"start", "set", "begin", "run", "countdown", "remind"}

	timerQuantityRe = regexp.MustCompile(`(\d+)\s*(seconds|second|secs|sec|minutes|minute|mins|min)\b`)
	timerTaskRe     = regexp.MustCompile(`for (.+)$`)
)

func (Keyword) Classify(text string) Intent {
	lower := strings.ToLower(text)

	it := Intent{
		Gym:  containsAny(lower, gymWords),
		Food: containsAny(lower, foodWords),
	}
	// A chart request must name what to chart.
	it.Graph = containsAny(lower, chartWords) && (it.Gym || it.Food || strings.Contains(lower, "habit"))
	it.Timer = containsAny(lower, timerWords) && timerQuantityRe.MatchString(lower)
	return it
}

// ParseTimer extracts (seconds, task) from a timer request. The countdown
// itself belongs to the chat surface, not the core.
func ParseTimer(text string) (int, string, bool) {
	lower := strings.ToLower(text)

	m := timerQuantityRe.FindStringSubmatch(lower)
	if m == nil {
		return 0, "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, "", false
	}
	seconds := n
	if strings.HasPrefix(m[2], "min") {
		seconds = n * 60
	}

	task := "your task"
	if tm := timerTaskRe.FindStringSubmatch(lower); tm != nil {
		task = strings.TrimSpace(tm[1])
	}
	return seconds, task, true
}

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
