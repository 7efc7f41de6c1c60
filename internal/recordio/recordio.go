// Package recordio is the persistence adapter for extraction records. It
// is the only component that reads or writes the on-disk JSON document.
// Saves never overwrite the input file: every save produces a new
// timestamp-suffixed sibling so each revision survives as its own
// artifact.
package recordio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/review-cli/internal/model"
)

var (
	// ErrNotFound indicates the record file does not exist.
	ErrNotFound = eris.New("recordio: record not found")
	// ErrMalformed indicates the file exists but is not a valid record.
	ErrMalformed = eris.New("recordio: malformed record")
	// ErrIO indicates a write failure while saving.
	ErrIO = eris.New("recordio: write failed")
)

// Load reads an extraction record from path. Missing "values" or
// "_provenance" sections default to empty so older files stay loadable.
func Load(path string) (*model.ExtractionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(ErrNotFound, "%s", path)
		}
		return nil, eris.Wrapf(err, "recordio: read %s", path)
	}

	var rec model.ExtractionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, eris.Wrapf(ErrMalformed, "%s: %v", path, err)
	}
	if rec.Values == nil {
		rec.Values = []model.ExtractionValue{}
	}
	if rec.Provenance == nil {
		rec.Provenance = []model.ProvenanceEntry{}
	}
	return &rec, nil
}

// Save writes rec to a timestamped sibling of originalPath and returns the
// path written. The original file is left untouched.
func Save(rec *model.ExtractionRecord, originalPath string) (string, error) {
	return saveAt(rec, originalPath, time.Now())
}

func saveAt(rec *model.ExtractionRecord, originalPath string, now time.Time) (string, error) {
	path := SavePath(originalPath, now)
	if err := Write(rec, path); err != nil {
		return "", err
	}
	return path, nil
}

// SavePath derives the revision filename for a save at the given time:
// {original_basename}_edited_{YYYYMMDD_HHMMSS}.json in the original's
// directory.
func SavePath(originalPath string, now time.Time) string {
	dir := filepath.Dir(originalPath)
	base := filepath.Base(originalPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, name+"_edited_"+now.Format("20060102_150405")+".json")
}

// Write serializes rec to exactly the given path. Used by Save and by
// callers placing an uploaded record at a known location.
func Write(rec *model.ExtractionRecord, path string) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return eris.Wrap(err, "recordio: marshal record")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(ErrIO, "%s: %v", path, err)
	}
	return nil
}
