// Package models defines client-side data models of the SnapNote device agent.
package models

import "fmt"

// Status is the delivery state of a note. It only ever moves from
// StatusPending to StatusSynced.
type Status string

const (
	StatusPending Status = "pending"
	StatusSynced  Status = "synced"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusSynced
}

// ParseStatus converts a stored or user supplied value into a Status.
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown note status %q", v)
	}
	return s, nil
}

// Note is a captured text + photo awaiting or having completed delivery.
// Every field except Status is immutable once the note is stored.
type Note struct {
	// ID is a globally unique identifier assigned at capture time.
	ID string

	// CreatedAt is the capture time in Unix milliseconds. It never decreases
	// on a single device.
	CreatedAt int64

	// Text is the free-form annotation, possibly empty.
	Text string

	// Image is the encoded photo. Its content is not validated.
	Image []byte

	Status Status
}

// SyncBatchResult is the outcome of one sync run.
type SyncBatchResult struct {
	// Attempted is the number of notes for which an upload was started.
	Attempted int
	// Synced is the number of notes transitioned to StatusSynced.
	Synced int
}
