package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/username/attendance-tracker/internal/calendar"
)

// Entry is one attended date. Entries are values; edits replace them.
type Entry struct {
	Day   int                   `json:"day"`
	Month calendar.StorageMonth `json:"month"`
	Year  int                   `json:"year"`
}

// History maps month keys to entry lists, remembering the order keys were
// first added. Its JSON form is an object with keys in that order.
type History struct {
	keys    []string
	buckets map[string][]Entry
}

// NewHistory creates an empty History
func NewHistory() *History {
	return &History{buckets: make(map[string][]Entry)}
}

// Len returns the number of buckets
func (h *History) Len() int {
	return len(h.keys)
}

// Keys returns bucket keys in insertion order
func (h *History) Keys() []string {
	return append([]string(nil), h.keys...)
}

// Get returns a copy of the bucket stored under key
func (h *History) Get(key string) ([]Entry, bool) {
	entries, ok := h.buckets[key]
	if !ok {
		return nil, false
	}
	return append([]Entry{}, entries...), true
}

// Set replaces a bucket. An existing key keeps its position; a new key is appended.
func (h *History) Set(key string, entries []Entry) {
	if _, ok := h.buckets[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.buckets[key] = append([]Entry{}, entries...)
}

// Delete removes a bucket. Deleting an absent key does nothing.
func (h *History) Delete(key string) {
	if _, ok := h.buckets[key]; !ok {
		return
	}
	delete(h.buckets, key)
	for i, k := range h.keys {
		if k == key {
			h.keys = append(h.keys[:i], h.keys[i+1:]...)
			break
		}
	}
}

// Each calls fn for every bucket in insertion order
func (h *History) Each(fn func(key string, entries []Entry)) {
	for _, key := range h.keys {
		fn(key, h.buckets[key])
	}
}

// Clone returns a deep copy
func (h *History) Clone() *History {
	clone := NewHistory()
	h.Each(func(key string, entries []Entry) {
		clone.Set(key, entries)
	})
	return clone
}

// MarshalJSON writes the buckets as a JSON object in insertion order
func (h *History) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range h.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		entries := h.buckets[key]
		if entries == nil {
			entries = []Entry{}
		}
		valueJSON, err := json.Marshal(entries)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(valueJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping the order its keys appear in
func (h *History) UnmarshalJSON(data []byte) error {
	fresh := NewHistory()

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*h = *fresh
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("history: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("history: expected key, got %v", tok)
		}

		var entries []Entry
		if err := dec.Decode(&entries); err != nil {
			return fmt.Errorf("history: bucket %s: %w", key, err)
		}
		fresh.Set(key, entries)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*h = *fresh
	return nil
}
