package recordio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/review-cli/internal/model"
)

func sampleRecord() *model.ExtractionRecord {
	return &model.ExtractionRecord{
		Values: []model.ExtractionValue{
			{Name: "amount", Value: "100", Type: model.TypeNumber, Rules: []string{"required"}},
			{Name: "vendor", Value: "Acme", Type: model.TypeString, Rules: []string{}},
		},
		Provenance: []model.ProvenanceEntry{
			{
				Timestamp: "2026-01-01T00:00:00Z",
				User:      model.User{Name: "Test User", Email: "test@example.com"},
				Document:  "invoice.json",
				Changes: []model.Change{
					{Field: "amount", OldValue: nil, NewValue: "100", Action: model.ActionAdded},
				},
				Notes: "initial extraction",
			},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	original := filepath.Join(dir, "invoice.json")
	rec := sampleRecord()

	require.NoError(t, Write(rec, original))
	path, err := Save(rec, original)
	require.NoError(t, err)
	assert.NotEqual(t, original, path)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, rec.Values, loaded.Values)
	assert.Equal(t, rec.Provenance, loaded.Provenance)
}

func TestSaveNeverOverwritesOriginal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	original := filepath.Join(dir, "invoice.json")
	require.NoError(t, os.WriteFile(original, []byte(`{"values":[],"_provenance":[]}`), 0o644))
	before, err := os.ReadFile(original)
	require.NoError(t, err)

	_, err = Save(sampleRecord(), original)
	require.NoError(t, err)

	after, err := os.ReadFile(original)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSavePathNaming(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 8, 31, 14, 30, 5, 0, time.UTC)
	got := SavePath(filepath.Join("data", "invoice.json"), at)
	assert.Equal(t, filepath.Join("data", "invoice_edited_20260831_143005.json"), got)
}

func TestLoadNotFound(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadMalformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestLoadDefaultsMissingSections(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "partial.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	rec, err := Load(path)
	require.NoError(t, err)
	assert.NotNil(t, rec.Values)
	assert.Empty(t, rec.Values)
	assert.NotNil(t, rec.Provenance)
	assert.Empty(t, rec.Provenance)
}

func TestSaveUnwritableDir(t *testing.T) {
	t.Parallel()

	_, err := Save(sampleRecord(), filepath.Join(t.TempDir(), "missing", "invoice.json"))
	assert.ErrorIs(t, err, ErrIO)
}
