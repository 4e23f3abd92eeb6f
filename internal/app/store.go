package app

import (
	"encoding/json"
	"errors"
	"fmt"

	"redstring/internal/board"
	"redstring/internal/kv"
)

// Store slots shared by the editor, the public view and the CLI.
const (
	EditorDataKey  = "editor-data"
	PublicDataKey  = "public-data"
	SubmissionsKey = "submissions"
)

// LoadDocument reads the board stored under key. found is false when the
// slot is empty; the caller decides what to show instead.
func LoadDocument(store kv.Store, key string) (doc *board.Document, found bool, err error) {
	raw, err := store.Get(key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	doc = &board.Document{}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	// A null entry in the stored array decodes to a nil node.
	nodes := make([]*board.Node, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if n != nil {
			nodes = append(nodes, n)
		}
	}
	doc.Nodes = nodes
	if doc.Links == nil {
		doc.Links = []board.Link{}
	}
	doc.ResolveLinks()
	return doc, true, nil
}

// LoadOrDemo is LoadDocument that falls back to the demo board on an empty
// or unreadable slot. The error is still returned so it can be logged.
func LoadOrDemo(store kv.Store, key string) (*board.Document, error) {
	doc, found, err := LoadDocument(store, key)
	if err != nil || !found {
		return board.Demo(), err
	}
	return doc, nil
}

func SaveDocument(store kv.Store, key string, doc *board.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// LoadSubmissions returns the stored suggestions, oldest first.
func LoadSubmissions(store kv.Store) ([]board.Submission, error) {
	raw, err := store.Get(SubmissionsKey)
	if errors.Is(err, kv.ErrNotFound) {
		return []board.Submission{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", SubmissionsKey, err)
	}
	var subs []board.Submission
	if err := json.Unmarshal(raw, &subs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", SubmissionsKey, err)
	}
	return subs, nil
}

func AppendSubmission(store kv.Store, s board.Submission) error {
	subs, err := LoadSubmissions(store)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(append(subs, s))
	if err != nil {
		return fmt.Errorf("encode %s: %w", SubmissionsKey, err)
	}
	if err := store.Set(SubmissionsKey, raw); err != nil {
		return fmt.Errorf("write %s: %w", SubmissionsKey, err)
	}
	return nil
}
