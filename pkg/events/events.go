// Package events defines event types for validation lifecycle notifications.
package events

import (
	"time"

	"github.com/edvalho/recipelint/pkg/models"
)

type EventType string

// Kafka topic for validation events.
const Topic = "recipelint.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Validation lifecycle events.
	RecipeValidatedEvent        EventType = "recipe.validated"
	RecipeValidationFailedEvent EventType = "recipe.validation.failed"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	RecipeName string         `json:"recipe_name,omitempty"`
	RecipePath string         `json:"recipe_path,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// RecipeValidated reports a run that ended in a Pass verdict. Warnings may
// still be attached.
type RecipeValidated struct {
	BaseEvent

	RunID    string                   `json:"run_id"`
	Warnings int                      `json:"warnings"`
	Issues   []models.ValidationIssue `json:"issues,omitempty"`
	Duration time.Duration            `json:"duration"`
}

func (r RecipeValidated) GetType() EventType {
	return RecipeValidatedEvent
}

// RecipeValidationFailed reports a run that ended in a Fail verdict.
type RecipeValidationFailed struct {
	BaseEvent

	RunID    string                   `json:"run_id"`
	Errors   int                      `json:"errors"`
	Warnings int                      `json:"warnings"`
	Issues   []models.ValidationIssue `json:"issues,omitempty"`
	Duration time.Duration            `json:"duration"`
}

func (r RecipeValidationFailed) GetType() EventType {
	return RecipeValidationFailedEvent
}
