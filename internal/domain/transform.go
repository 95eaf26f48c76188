package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// approachNamespace scopes approach IDs so they never collide with other UUIDv5 users.
var approachNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://ssd-api.jpl.nasa.gov/cad.api"))

// ParseRawEvent deserializes a RawEvent's value into an unlinked CloseApproach.
// It expects the flat CAD-row JSON produced by the collector service.
func ParseRawEvent(raw RawEvent) (*CloseApproach, error) {
	var rec RawApproachRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return nil, fmt.Errorf("parse raw event: %w", err)
	}
	return NewCloseApproachFromRecord(rec)
}

// NewCloseApproachFromRecord builds a CloseApproach from the model-bearing CAD columns.
func NewCloseApproachFromRecord(rec RawApproachRecord) (*CloseApproach, error) {
	return NewCloseApproach(
		strings.TrimSpace(rec.Designation),
		rec.Time,
		strings.TrimSpace(rec.Distance),
		strings.TrimSpace(rec.Velocity),
	)
}

// ApproachID produces a deterministic ID from the approach's key fields.
// Replaying the same CAD row yields the same ID, so downstream upserts stay idempotent.
func ApproachID(designation string, t time.Time) string {
	input := designation + "|" + FormatApproachTime(t)
	return uuid.NewSHA1(approachNamespace, []byte(input)).String()
}

// SerializeApproach marshals a CloseApproach into an OutputEvent keyed by its ID
// and stamped with the current clock time.
func SerializeApproach(ca *CloseApproach) (OutputEvent, error) {
	rec := ca.Serialize()
	rec.ProcessedAt = clock.Now().UTC()

	data, err := json.Marshal(rec)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize close approach: %w", err)
	}
	return OutputEvent{
		Key:   []byte(rec.ID),
		Value: data,
		Headers: map[string]string{
			"designation":  rec.Designation,
			"linked":       strconv.FormatBool(rec.NEO != nil),
			"processed_at": rec.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
