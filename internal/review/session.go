// Package review orchestrates an editing session over one extraction
// record: load, present, accept edits, diff, commit, persist. The session
// is the sole mutator of its in-memory record; no other component writes
// to it while the session is open.
package review

import (
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/review-cli/internal/diff"
	"github.com/sells-group/review-cli/internal/model"
	"github.com/sells-group/review-cli/internal/provenance"
	"github.com/sells-group/review-cli/internal/recordio"
)

// State tracks where a session is in the edit loop.
type State string

const (
	StateLoaded         State = "loaded"
	StatePresenting     State = "presenting"
	StateEditsSubmitted State = "edits_submitted"
	StateCommitted      State = "committed"
	StateClosed         State = "closed"
)

// ErrClosed is returned when an operation is attempted on a closed
// session. This is a programming error, not a runtime condition.
var ErrClosed = eris.New("review: session is closed")

// Session is the explicit per-review context: the reviewer, the files
// under review, and the record being edited. Single-threaded by design;
// one session owns one record at a time.
type Session struct {
	ID             string
	User           model.User
	RecordPath     string
	DocumentPath   string
	OCRPath        string
	GuidelinesPath string

	record  *model.ExtractionRecord
	state   State
	loadErr error
}

// Option configures optional session inputs.
type Option func(*Session)

// WithDocument attaches the source document under review.
func WithDocument(path string) Option {
	return func(s *Session) { s.DocumentPath = path }
}

// WithOCR attaches OCR data for the document.
func WithOCR(path string) Option {
	return func(s *Session) { s.OCRPath = path }
}

// WithGuidelines attaches a review-guidelines file.
func WithGuidelines(path string) Option {
	return func(s *Session) { s.GuidelinesPath = path }
}

// Open starts a session for the record at recordPath. A load failure is
// not fatal: the session starts on an empty record and the error is kept
// for the caller to surface (reviewer availability over strictness).
func Open(user model.User, recordPath string, opts ...Option) *Session {
	s := &Session{
		ID:         uuid.NewString(),
		User:       user,
		RecordPath: recordPath,
		state:      StateLoaded,
	}
	for _, opt := range opts {
		opt(s)
	}

	rec, err := recordio.Load(recordPath)
	if err != nil {
		zap.L().Warn("record load failed, starting empty",
			zap.String("path", recordPath),
			zap.Error(err),
		)
		rec = model.NewExtractionRecord()
		s.loadErr = err
	}
	s.record = rec
	s.state = StatePresenting
	return s
}

// Record exposes the in-session record for display and queries. Callers
// must not mutate it; all writes go through Submit.
func (s *Session) Record() *model.ExtractionRecord { return s.record }

// Values returns the current value-set.
func (s *Session) Values() []model.ExtractionValue { return s.record.Values }

// State returns the session's current lifecycle state.
func (s *Session) State() State { return s.state }

// LoadError reports the load failure absorbed at Open, if any.
func (s *Session) LoadError() error { return s.loadErr }

// CommitResult describes the outcome of one Submit.
type CommitResult struct {
	Changes  []model.Change `json:"changes"`
	Warnings []Warning      `json:"warnings"`
	// Committed is true when a provenance entry was appended, i.e. the
	// diff was non-empty.
	Committed bool `json:"committed"`
}

// Submit accepts a full replacement value-set with free-text notes,
// diffs it against the current values, and commits. A non-empty diff
// appends one provenance entry and leaves the session in StateCommitted;
// the value-set is replaced either way, so resubmitting identical data is
// a no-op diff that still re-applies the same values and returns to
// StatePresenting. Validation findings come back as warnings and never
// block the commit.
func (s *Session) Submit(values []model.ExtractionValue, notes string) (*CommitResult, error) {
	if s.state == StateClosed {
		return nil, ErrClosed
	}
	s.state = StateEditsSubmitted

	warnings := Validate(values)
	changes := diff.Compute(s.record.Values, values)

	if len(changes) > 0 {
		entry := provenance.NewEntry(s.User, s.RecordPath, changes, notes)
		provenance.Append(s.record, entry)
		s.state = StateCommitted
	} else {
		// No-op diff: straight back to presenting.
		s.state = StatePresenting
	}
	s.record.Values = values

	zap.L().Info("edits committed",
		zap.String("session", s.ID),
		zap.String("record", s.RecordPath),
		zap.Int("changes", len(changes)),
		zap.Int("warnings", len(warnings)),
	)

	return &CommitResult{
		Changes:   changes,
		Warnings:  warnings,
		Committed: len(changes) > 0,
	}, nil
}

// Save persists the record to a new timestamped sibling of the current
// record path and repoints the session at it, so further edits build on
// the saved revision. The prior file is never overwritten.
func (s *Session) Save() (string, error) {
	if s.state == StateClosed {
		return "", ErrClosed
	}
	path, err := recordio.Save(s.record, s.RecordPath)
	if err != nil {
		return "", err
	}
	s.RecordPath = path
	zap.L().Info("record saved", zap.String("session", s.ID), zap.String("path", path))
	return path, nil
}

// Close ends the session. The record stays as last committed; nothing is
// persisted implicitly.
func (s *Session) Close() {
	s.state = StateClosed
}
