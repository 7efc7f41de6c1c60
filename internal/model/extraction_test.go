package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueTypeKnown(t *testing.T) {
	t.Parallel()

	for _, vt := range []ValueType{TypeString, TypeNumber, TypeBoolean, TypeDate, TypeArray, TypeObject} {
		assert.True(t, vt.Known(), string(vt))
	}
	assert.False(t, ValueType("currency").Known())
	assert.False(t, ValueType("").Known())
}

func TestRulesRoundTrip(t *testing.T) {
	t.Parallel()

	v := ExtractionValue{Rules: []string{"required", "min:0"}}
	text := v.RulesText()
	assert.Equal(t, "required, min:0", text)
	assert.Equal(t, []string{"required", "min:0"}, SplitRules(text))
}

func TestSplitRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{}},
		{"whitespace only", "   ", []string{}},
		{"single", "required", []string{"required"}},
		{"untrimmed", "  required ,  max:10 ", []string{"required", "max:10"}},
		{"empty segments dropped", "required,,min:0,", []string{"required", "min:0"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SplitRules(tt.in))
		})
	}
}

func TestExtractionRecordJSONLayout(t *testing.T) {
	t.Parallel()

	rec := NewExtractionRecord()
	rec.Values = append(rec.Values, ExtractionValue{
		Name: "amount", Value: "100", Type: TypeNumber, Rules: []string{},
	})

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "values")
	assert.Contains(t, raw, "_provenance")
}

func TestProvenanceEntryTime(t *testing.T) {
	t.Parallel()

	e := ProvenanceEntry{Timestamp: "2026-08-31T12:00:00Z"}
	assert.Equal(t, time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC), e.Time())

	assert.True(t, ProvenanceEntry{Timestamp: "not-a-time"}.Time().IsZero())
	assert.True(t, ProvenanceEntry{}.Time().IsZero())
}
