// Package diff computes field-level change lists between two snapshots of
// an extraction value-set. It is the single source of truth for what gets
// written into the provenance log.
package diff

import (
	"encoding/json"
	"fmt"

	"github.com/sells-group/review-cli/internal/model"
)

// Compute compares a prior value-set against an edited one and returns the
// minimal change list. Row identity is positional for rows present in both
// snapshots: row i of edited is compared against row i of previous. Rows
// beyond the end of previous are added; rows beyond the end of edited are
// deleted. Inserting a row mid-sequence therefore shifts everything after
// it and reports those rows as modified; that matches the editing surface,
// which presents rows by index.
//
// Pure function: no side effects, same inputs always produce the same
// change list.
func Compute(previous, edited []model.ExtractionValue) []model.Change {
	var changes []model.Change

	for i, row := range edited {
		if i >= len(previous) {
			changes = append(changes, model.Change{
				Field:    row.Name,
				OldValue: nil,
				NewValue: row.Value,
				Action:   model.ActionAdded,
			})
			continue
		}
		if rowChanged(previous[i], row) {
			changes = append(changes, model.Change{
				Field:    row.Name,
				OldValue: previous[i].Value,
				NewValue: row.Value,
				Action:   model.ActionModified,
			})
		}
	}

	for i := len(edited); i < len(previous); i++ {
		changes = append(changes, model.Change{
			Field:    previous[i].Name,
			OldValue: previous[i].Value,
			NewValue: nil,
			Action:   model.ActionDeleted,
		})
	}

	return changes
}

// rowChanged compares every editable column of a row: name, value, type,
// and the textual rule list the editor presents.
func rowChanged(prev, next model.ExtractionValue) bool {
	if prev.Name != next.Name || prev.Type != next.Type {
		return true
	}
	if prev.RulesText() != next.RulesText() {
		return true
	}
	return !ValuesEqual(prev.Value, next.Value)
}

// ValuesEqual reports representation equality between two extracted
// values: the string "1250.00" and the number 1250.0 are different even
// though they are numerically equal. Values arrive from JSON, so the
// canonical JSON encoding is a faithful representation.
func ValuesEqual(a, b any) bool {
	ab, aerr := json.Marshal(a)
	bb, berr := json.Marshal(b)
	if aerr != nil || berr != nil {
		// Non-serializable values never come off the wire; fall back to
		// formatted comparison rather than guessing.
		return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
	}
	return string(ab) == string(bb)
}
