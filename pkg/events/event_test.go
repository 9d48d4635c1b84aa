package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewBaseEvent(t *testing.T) {
	aggregateID := uuid.New()

	before := time.Now().UTC()
	event := NewBaseEvent("LoanScored", aggregateID, "LoanRecord")
	after := time.Now().UTC()

	if event.EventID() == uuid.Nil {
		t.Error("expected non-nil event ID")
	}

	if event.EventType() != "LoanScored" {
		t.Errorf("expected event type %q, got %q", "LoanScored", event.EventType())
	}

	if event.AggregateID() != aggregateID {
		t.Errorf("expected aggregate ID %v, got %v", aggregateID, event.AggregateID())
	}

	if event.AggregateType() != "LoanRecord" {
		t.Errorf("expected aggregate type %q, got %q", "LoanRecord", event.AggregateType())
	}

	if event.OccurredAt().Before(before) || event.OccurredAt().After(after) {
		t.Errorf("expected occurredAt between %v and %v, got %v", before, after, event.OccurredAt())
	}
}

func TestNewBaseEventUniqueIDs(t *testing.T) {
	aggregateID := uuid.New()

	first := NewBaseEvent("ModelTrained", aggregateID, "ModelArtifact")
	second := NewBaseEvent("ModelTrained", aggregateID, "ModelArtifact")

	if first.EventID() == second.EventID() {
		t.Error("expected distinct event IDs for separate events")
	}
}

func TestBaseEventImplementsDomainEvent(t *testing.T) {
	var _ DomainEvent = BaseEvent{}
}
