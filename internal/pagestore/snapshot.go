package pagestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
)

// ErrMalformedSnapshot is returned when a snapshot cannot be parsed or has no pages
var ErrMalformedSnapshot = errors.New("malformed document snapshot")

// Snapshot is the persisted form of a document
type Snapshot struct {
	Pages        []Page    `json:"pages"`
	LastModified time.Time `json:"lastModified"`
}

// snapshotPage is the wire form of a page. Ids are renumbered on load, so
// whatever was stored in them is ignored.
type snapshotPage struct {
	ID      json.RawMessage `json:"id"`
	Content string          `json:"content"`
	Header  string          `json:"header"`
	Footer  string          `json:"footer"`
}

// DecodeSnapshot parses a JSON snapshot. Only a missing or unreadable pages
// list makes it malformed; an unparsable lastModified decodes as the zero time.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var raw struct {
		Pages        *[]snapshotPage `json:"pages"`
		LastModified json.RawMessage `json:"lastModified"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if raw.Pages == nil {
		return nil, fmt.Errorf("%w: missing pages", ErrMalformedSnapshot)
	}

	snap := &Snapshot{Pages: make([]Page, 0, len(*raw.Pages))}
	for i, p := range *raw.Pages {
		snap.Pages = append(snap.Pages, Page{ID: i + 1, Content: p.Content, Header: p.Header, Footer: p.Footer})
	}
	if len(raw.LastModified) > 0 {
		var t time.Time
		if err := json.Unmarshal(raw.LastModified, &t); err == nil {
			snap.LastModified = t
		}
	}
	return snap, nil
}

// Encode serializes the snapshot as indented JSON
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Snapshot returns the trimmed sequence stamped with now
func (s *Store) Snapshot(now time.Time) *Snapshot {
	return &Snapshot{
		Pages:        Trim(s.pages),
		LastModified: now.UTC(),
	}
}

// LoadSnapshot replaces the sequence with a decoded snapshot. A malformed
// snapshot leaves a single empty page and returns ErrMalformedSnapshot.
func (s *Store) LoadSnapshot(data []byte) error {
	snap, err := DecodeSnapshot(data)
	if err != nil {
		log.Printf("[Store] warning: %v; starting from an empty document", err)
		s.Initialize()
		return err
	}
	s.Load(snap.Pages)
	return nil
}
