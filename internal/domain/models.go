// Package domain contains the board models shared by the runtime, the status
// server and publishers.
package domain

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic fingerprint
	"encoding/hex"
	"strings"
	"time"
)

// Line is one labelled value shown on the board.
type Line struct {
	Label string `json:"label"`
	Path  string `json:"path"`
	Value string `json:"value"`
}

// Snapshot is what the board displayed after one successful poll.
type Snapshot struct {
	ID        string    `json:"id"`
	Resource  string    `json:"resource"`
	Lines     []Line    `json:"lines"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NewSnapshot builds a snapshot whose ID fingerprints the resource and the
// displayed values, so two polls showing the same board share an ID.
func NewSnapshot(resource string, lines []Line, fetchedAt time.Time) Snapshot {
	cp := make([]Line, len(lines))
	copy(cp, lines)
	return Snapshot{
		ID:        fingerprint(resource, cp),
		Resource:  resource,
		Lines:     cp,
		FetchedAt: fetchedAt.UTC(),
	}
}

// Value returns the value displayed under label.
func (s Snapshot) Value(label string) (string, bool) {
	for _, l := range s.Lines {
		if l.Label == label {
			return l.Value, true
		}
	}
	return "", false
}

func fingerprint(resource string, lines []Line) string {
	var b strings.Builder
	b.WriteString(resource)
	for _, l := range lines {
		b.WriteByte(0)
		b.WriteString(l.Label)
		b.WriteByte(0)
		b.WriteString(l.Value)
	}
	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
