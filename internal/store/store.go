// Package store provides the memory storage interface and SQLite implementation.
package store

import (
	"context"

	"github.com/rcliao/habit-agent/internal/model"
)

// AppendMessageParams holds parameters for persisting one turn.
// ID and Timestamp are assigned by the store at write time.
type AppendMessageParams struct {
	UserID   string
	Role     model.Role
	Category model.Category // empty defaults to general
	Content  string
}

// AppendObservationParams holds parameters for persisting a derived fact.
type AppendObservationParams struct {
	UserID     string
	Date       string // YYYY-MM-DD
	Kind       model.ObservationKind
	Value      float64
	SourceText string
}

// ObservationParams filters observation reads.
type ObservationParams struct {
	UserID string
	Kind   model.ObservationKind // empty means all kinds
	Since  string                // inclusive date floor, empty means no floor
}

// Store defines the memory storage contract. Messages are append-only and
// immutable; deletion happens only through whole-user erasure.
type Store interface {
	// AppendMessage durably persists one turn before returning.
	AppendMessage(ctx context.Context, p AppendMessageParams) (*model.Message, error)

	// AppendObservation durably persists one derived habit fact.
	AppendObservation(ctx context.Context, p AppendObservationParams) (*model.Observation, error)

	// Snapshot returns the user's full message log in append order, oldest
	// first. A user with no data yields an empty slice, not an error.
	Snapshot(ctx context.Context, userID string) ([]model.Message, error)

	// ListObservations returns the user's observations, date ascending.
	ListObservations(ctx context.Context, p ObservationParams) ([]model.Observation, error)

	// Erase removes all messages and observations for the user and only
	// that user. Erasing a user with no data is a no-op.
	Erase(ctx context.Context, userID string) error

	// Close closes the store.
	Close() error
}
