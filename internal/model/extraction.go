package model

import (
	"strings"
	"time"
)

// ValueType classifies an extracted value for display and validation.
type ValueType string

const (
	TypeString  ValueType = "string"
	TypeNumber  ValueType = "number"
	TypeBoolean ValueType = "boolean"
	TypeDate    ValueType = "date"
	TypeArray   ValueType = "array"
	TypeObject  ValueType = "object"
)

// Known reports whether t is one of the recognized value types.
// Unknown types are accepted by the editor but surfaced as warnings.
func (t ValueType) Known() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeDate, TypeArray, TypeObject:
		return true
	}
	return false
}

// ExtractionValue is one key/value row of a document extraction.
// Name is the logical field identity; uniqueness within a record is
// recommended but not enforced (duplicates degrade history queries).
type ExtractionValue struct {
	Name  string    `json:"name"`
	Value any       `json:"value"`
	Type  ValueType `json:"type"`
	Rules []string  `json:"rules"`
}

// RulesText renders the rule list for display and editing.
func (v ExtractionValue) RulesText() string {
	return strings.Join(v.Rules, ", ")
}

// SplitRules parses an edited textual rule list back into a rule slice.
// Rules are comma-separated; surrounding whitespace is trimmed and empty
// segments dropped, so SplitRules(v.RulesText()) round-trips.
func SplitRules(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	rules := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			rules = append(rules, p)
		}
	}
	return rules
}

// ChangeAction describes what happened to a field in one edit.
type ChangeAction string

const (
	ActionAdded    ChangeAction = "added"
	ActionModified ChangeAction = "modified"
	ActionDeleted  ChangeAction = "deleted"
)

// Change records a single field-level edit. OldValue is nil for added
// fields, NewValue is nil for deleted fields.
type Change struct {
	Field    string       `json:"field"`
	OldValue any          `json:"old_value"`
	NewValue any          `json:"new_value"`
	Action   ChangeAction `json:"action"`
}

// User identifies the reviewer responsible for an edit.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// ProvenanceEntry is one immutable audit record: who changed what, when,
// and why. Entries are append-only; the log's authority is append order,
// not timestamp value.
type ProvenanceEntry struct {
	Timestamp string   `json:"timestamp"`
	User      User     `json:"user"`
	Document  string   `json:"document"`
	Changes   []Change `json:"changes"`
	Notes     string   `json:"notes"`
}

// Time parses the entry timestamp. Zero time on malformed input; callers
// sorting by time fall back to append order.
func (e ProvenanceEntry) Time() time.Time {
	t, err := time.Parse(time.RFC3339Nano, e.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ExtractionRecord is a versioned key/value extraction plus its audit log.
// Values are replaced wholesale on each commit; Provenance only grows.
type ExtractionRecord struct {
	Values     []ExtractionValue `json:"values"`
	Provenance []ProvenanceEntry `json:"_provenance"`
}

// NewExtractionRecord returns an empty record with non-nil slices so that
// serialization always emits both sections.
func NewExtractionRecord() *ExtractionRecord {
	return &ExtractionRecord{
		Values:     []ExtractionValue{},
		Provenance: []ProvenanceEntry{},
	}
}

// FieldEvent is one flattened history item for a single field, produced
// by provenance queries.
type FieldEvent struct {
	Timestamp string       `json:"timestamp"`
	User      User         `json:"user"`
	OldValue  any          `json:"old_value"`
	NewValue  any          `json:"new_value"`
	Action    ChangeAction `json:"action"`
	Notes     string       `json:"notes"`
}
