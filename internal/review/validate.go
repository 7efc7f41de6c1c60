package review

import (
	"fmt"

	"github.com/sells-group/review-cli/internal/model"
)

// WarningCode classifies a validation finding.
type WarningCode string

const (
	WarnMissingName WarningCode = "missing_name"
	WarnUnknownType WarningCode = "unknown_type"
)

// Warning is a non-fatal validation finding surfaced to the caller. The
// editing surface favors availability: warnings never block a commit.
type Warning struct {
	Code    WarningCode `json:"code"`
	Row     int         `json:"row"`
	Field   string      `json:"field,omitempty"`
	Message string      `json:"message"`
}

// Validate checks a submitted value-set for structural problems: rows
// without a name and rows with an unrecognized value type.
func Validate(values []model.ExtractionValue) []Warning {
	var warnings []Warning
	for i, v := range values {
		if v.Name == "" {
			warnings = append(warnings, Warning{
				Code:    WarnMissingName,
				Row:     i,
				Message: fmt.Sprintf("row %d has no field name", i),
			})
		}
		if !v.Type.Known() {
			warnings = append(warnings, Warning{
				Code:    WarnUnknownType,
				Row:     i,
				Field:   v.Name,
				Message: fmt.Sprintf("row %d (%s) has unrecognized type %q", i, v.Name, v.Type),
			})
		}
	}
	return warnings
}
