package review

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/review-cli/internal/model"
	"github.com/sells-group/review-cli/internal/recordio"
)

var reviewer = model.User{Name: "Test User", Email: "test@example.com", Role: "reviewer"}

func writeRecord(t *testing.T, rec *model.ExtractionRecord) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "invoice.json")
	require.NoError(t, recordio.Write(rec, path))
	return path
}

func TestOpenLoadsRecord(t *testing.T) {
	t.Parallel()

	rec := model.NewExtractionRecord()
	rec.Values = append(rec.Values, model.ExtractionValue{
		Name: "amount", Value: "100", Type: model.TypeNumber, Rules: []string{},
	})
	path := writeRecord(t, rec)

	sess := Open(reviewer, path, WithDocument("invoice.pdf"), WithOCR("invoice_ocr.json"))
	defer sess.Close()

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, StatePresenting, sess.State())
	assert.NoError(t, sess.LoadError())
	assert.Equal(t, "invoice.pdf", sess.DocumentPath)
	assert.Equal(t, "invoice_ocr.json", sess.OCRPath)
	require.Len(t, sess.Values(), 1)
	assert.Equal(t, "amount", sess.Values()[0].Name)
}

func TestOpenMissingFileDegradesToEmpty(t *testing.T) {
	t.Parallel()

	sess := Open(reviewer, filepath.Join(t.TempDir(), "nope.json"))
	defer sess.Close()

	assert.ErrorIs(t, sess.LoadError(), recordio.ErrNotFound)
	assert.Empty(t, sess.Values())
	assert.Empty(t, sess.Record().Provenance)
	// Editing continues on the empty record.
	assert.Equal(t, StatePresenting, sess.State())
}

func TestOpenMalformedFileDegradesToEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{{"), 0o644))

	sess := Open(reviewer, path)
	defer sess.Close()

	assert.ErrorIs(t, sess.LoadError(), recordio.ErrMalformed)
	assert.Empty(t, sess.Values())
}

// Reviewer corrects an OCR misread: one modified change, one provenance
// entry, values replaced.
func TestSubmitCorrectionScenario(t *testing.T) {
	t.Parallel()

	rec := model.NewExtractionRecord()
	rec.Values = append(rec.Values, model.ExtractionValue{
		Name: "amount", Value: "100", Type: model.TypeNumber, Rules: []string{},
	})
	sess := Open(reviewer, writeRecord(t, rec))
	defer sess.Close()

	edited := []model.ExtractionValue{
		{Name: "amount", Value: "150", Type: model.TypeNumber, Rules: []string{}},
	}
	result, err := sess.Submit(edited, "corrected OCR error")
	require.NoError(t, err)

	assert.True(t, result.Committed)
	assert.Equal(t, StateCommitted, sess.State())
	require.Len(t, result.Changes, 1)
	assert.Equal(t, model.Change{
		Field:    "amount",
		OldValue: "100",
		NewValue: "150",
		Action:   model.ActionModified,
	}, result.Changes[0])

	assert.Equal(t, "150", sess.Values()[0].Value)
	require.Len(t, sess.Record().Provenance, 1)
	entry := sess.Record().Provenance[0]
	assert.Equal(t, reviewer, entry.User)
	assert.Equal(t, "corrected OCR error", entry.Notes)
	assert.Equal(t, result.Changes, entry.Changes)
	assert.False(t, entry.Time().IsZero())
}

func TestSubmitNoChangesAppendsNothing(t *testing.T) {
	t.Parallel()

	rec := model.NewExtractionRecord()
	rec.Values = append(rec.Values, model.ExtractionValue{
		Name: "amount", Value: "100", Type: model.TypeNumber, Rules: []string{},
	})
	sess := Open(reviewer, writeRecord(t, rec))
	defer sess.Close()

	same := []model.ExtractionValue{
		{Name: "amount", Value: "100", Type: model.TypeNumber, Rules: []string{}},
	}

	// Two sequential identical submissions: no provenance growth.
	for i := 0; i < 2; i++ {
		result, err := sess.Submit(same, "")
		require.NoError(t, err)
		assert.False(t, result.Committed)
		assert.Empty(t, result.Changes)
		assert.Empty(t, sess.Record().Provenance)
		assert.Equal(t, StatePresenting, sess.State())
	}
	// Values are still re-applied.
	assert.Equal(t, same, sess.Values())
}

func TestSubmitWarningsDoNotBlockCommit(t *testing.T) {
	t.Parallel()

	sess := Open(reviewer, writeRecord(t, model.NewExtractionRecord()))
	defer sess.Close()

	edited := []model.ExtractionValue{
		{Name: "", Value: "x", Type: model.TypeString, Rules: []string{}},
		{Name: "total", Value: "9", Type: "currency", Rules: []string{}},
	}
	result, err := sess.Submit(edited, "")
	require.NoError(t, err)

	assert.True(t, result.Committed)
	require.Len(t, result.Warnings, 2)
	assert.Equal(t, WarnMissingName, result.Warnings[0].Code)
	assert.Equal(t, WarnUnknownType, result.Warnings[1].Code)
	assert.Len(t, sess.Values(), 2)
	assert.Len(t, sess.Record().Provenance, 1)
}

func TestSaveRepointsSession(t *testing.T) {
	t.Parallel()

	original := writeRecord(t, model.NewExtractionRecord())
	sess := Open(reviewer, original)
	defer sess.Close()

	_, err := sess.Submit([]model.ExtractionValue{
		{Name: "vendor", Value: "Acme", Type: model.TypeString, Rules: []string{}},
	}, "first pass")
	require.NoError(t, err)

	saved, err := sess.Save()
	require.NoError(t, err)
	assert.NotEqual(t, original, saved)
	assert.Equal(t, saved, sess.RecordPath)
	assert.True(t, strings.Contains(filepath.Base(saved), "_edited_"))

	loaded, err := recordio.Load(saved)
	require.NoError(t, err)
	assert.Equal(t, sess.Record().Values, loaded.Values)
	assert.Equal(t, sess.Record().Provenance, loaded.Provenance)
}

func TestClosedSessionRejectsOperations(t *testing.T) {
	t.Parallel()

	sess := Open(reviewer, writeRecord(t, model.NewExtractionRecord()))
	sess.Close()
	assert.Equal(t, StateClosed, sess.State())

	_, err := sess.Submit(nil, "")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = sess.Save()
	assert.ErrorIs(t, err, ErrClosed)
}
