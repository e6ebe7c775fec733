package models

import "encoding/json"

// LibraryRecord is the persisted creator library document.
type LibraryRecord struct {
	PrimaryCreator   string                 `json:"primary_creator"`
	SecondaryCreator string                 `json:"secondary_creator"`
	System           string                 `json:"system"`
	Version          string                 `json:"version"`
	CreatedDate      string                 `json:"created_date"`
	Metadata         map[string]any         `json:"metadata"`
	QueryHistory     []QueryEntry           `json:"query_history"`
	StoredInfo       map[string]StoredValue `json:"stored_info"`
}

type QueryEntry struct {
	ID        string `json:"id,omitempty"`
	Timestamp string `json:"timestamp"`
	Query     string `json:"query"`
	Type      string `json:"type"`
}

type StoredValue struct {
	Value     any    `json:"value"`
	Timestamp string `json:"timestamp"`
}

// Clone returns a deep copy made through a JSON round trip.
func (r *LibraryRecord) Clone() (*LibraryRecord, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var out LibraryRecord
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	out.Normalize()
	return &out, nil
}

// Normalize replaces nil collections with empty ones so the document
// always serializes with [] and {} rather than null.
func (r *LibraryRecord) Normalize() {
	if r.Metadata == nil {
		r.Metadata = map[string]any{}
	}
	if r.QueryHistory == nil {
		r.QueryHistory = []QueryEntry{}
	}
	if r.StoredInfo == nil {
		r.StoredInfo = map[string]StoredValue{}
	}
}
