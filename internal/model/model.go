// Package model defines the core chat and habit data types.
package model

import (
	"errors"
	"time"
)

// ErrValidation marks malformed caller input, rejected before any write.
// Wrap it with fmt.Errorf("%w: ...") and test with errors.Is.
var ErrValidation = errors.New("validation")

// Role identifies who produced a conversational turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Category tags a message with the habit domain it touches.
type Category string

const (
	CategoryFood     Category = "food"
	CategoryExercise Category = "exercise"
	CategoryGeneral  Category = "general"
)

// Message represents one stored conversational turn.
// Timestamp is assigned by the store at write time and immutable after.
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	Category  Category  `json:"category"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ObservationKind distinguishes the numeric facts we extract.
type ObservationKind string

const (
	// KindDuration is exercise time. Values are stored in minutes; hour
	// mentions are converted at the extraction boundary.
	KindDuration ObservationKind = "duration"
	// KindCalories is food energy in kcal.
	KindCalories ObservationKind = "calories"
)

// Observation is a structured numeric fact derived from an utterance.
// SourceText keeps the original wording for auditability.
type Observation struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Date       string          `json:"date"` // calendar day, YYYY-MM-DD
	Kind       ObservationKind `json:"kind"`
	Value      float64         `json:"value"`
	SourceText string          `json:"source_text,omitempty"`
}

// ValidRoles are the allowed message roles.
var ValidRoles = map[Role]bool{
	RoleUser:      true,
	RoleAssistant: true,
}

// ValidCategories are the allowed message categories.
var ValidCategories = map[Category]bool{
	CategoryFood:     true,
	CategoryExercise: true,
	CategoryGeneral:  true,
}

// ValidObservationKinds are the allowed observation kinds.
var ValidObservationKinds = map[ObservationKind]bool{
	KindDuration: true,
	KindCalories: true,
}

// DateLayout is the canonical observation date format.
const DateLayout = "2006-01-02"

// DateOf formats an instant as an observation date.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}
