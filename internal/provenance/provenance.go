// Package provenance maintains the append-only audit trail attached to an
// extraction record and answers history queries over it.
package provenance

import (
	"encoding/json"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/review-cli/internal/model"
)

// ErrEmptyLog is returned by export operations when the record carries no
// provenance entries.
var ErrEmptyLog = eris.New("provenance: log is empty")

// NewEntry builds a provenance entry stamped with the current UTC time.
func NewEntry(user model.User, document string, changes []model.Change, notes string) model.ProvenanceEntry {
	return model.ProvenanceEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		User:      user,
		Document:  document,
		Changes:   changes,
		Notes:     notes,
	}
}

// Append adds entry to the end of the record's log. The log only ever
// grows; no entry is edited or removed once appended.
func Append(rec *model.ExtractionRecord, entry model.ProvenanceEntry) {
	rec.Provenance = append(rec.Provenance, entry)
}

// FieldHistory flattens every change touching the named field, oldest
// entry first. Duplicate field names are not deduplicated: every row
// sharing the name contributes its events.
func FieldHistory(rec *model.ExtractionRecord, fieldName string) []model.FieldEvent {
	var events []model.FieldEvent
	for _, entry := range rec.Provenance {
		for _, ch := range entry.Changes {
			if ch.Field != fieldName {
				continue
			}
			events = append(events, model.FieldEvent{
				Timestamp: entry.Timestamp,
				User:      entry.User,
				OldValue:  ch.OldValue,
				NewValue:  ch.NewValue,
				Action:    ch.Action,
				Notes:     entry.Notes,
			})
		}
	}
	return events
}

// UserHistory returns the entries authored by the reviewer with the given
// email, oldest first. Matching is case-insensitive on the email address.
func UserHistory(rec *model.ExtractionRecord, email string) []model.ProvenanceEntry {
	var entries []model.ProvenanceEntry
	for _, entry := range rec.Provenance {
		if strings.EqualFold(entry.User.Email, email) {
			entries = append(entries, entry)
		}
	}
	return entries
}

// ExportSorted writes a timestamp-ascending copy of the log to w as
// indented JSON for external audit reporting. The live log is never
// reordered; entries with equal or unparseable timestamps keep their
// append order. Returns ErrEmptyLog when there is nothing to export.
func ExportSorted(rec *model.ExtractionRecord, w io.Writer) error {
	if len(rec.Provenance) == 0 {
		return ErrEmptyLog
	}

	sorted := make([]model.ProvenanceEntry, len(rec.Provenance))
	copy(sorted, rec.Provenance)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time().Before(sorted[j].Time())
	})

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sorted); err != nil {
		return eris.Wrap(err, "provenance: export")
	}
	return nil
}

// ExportFile writes the sorted audit report to path, creating or
// truncating the file.
func ExportFile(rec *model.ExtractionRecord, path string) error {
	if len(rec.Provenance) == 0 {
		return ErrEmptyLog
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "provenance: create report %s", path)
	}
	defer f.Close()
	return ExportSorted(rec, f)
}
