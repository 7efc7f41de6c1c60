package review

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/review-cli/internal/model"
)

// submittedRow tolerates the two shapes the editing surface produces:
// rules as a JSON array or as the comma-joined text shown in the editor.
type submittedRow struct {
	Name  string          `json:"name"`
	Value any             `json:"value"`
	Type  model.ValueType `json:"type"`
	Rules json.RawMessage `json:"rules"`
}

// ParseRows decodes a submitted value-set from JSON. Textual rule lists
// are re-split on commas and trimmed, matching how the editor renders
// them.
func ParseRows(data []byte) ([]model.ExtractionValue, error) {
	var rows []submittedRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, eris.Wrap(err, "review: parse rows")
	}

	values := make([]model.ExtractionValue, 0, len(rows))
	for _, r := range rows {
		v := model.ExtractionValue{
			Name:  r.Name,
			Value: r.Value,
			Type:  r.Type,
			Rules: []string{},
		}
		if len(r.Rules) > 0 {
			var list []string
			if err := json.Unmarshal(r.Rules, &list); err == nil {
				v.Rules = list
			} else {
				var text string
				if err := json.Unmarshal(r.Rules, &text); err != nil {
					return nil, eris.Errorf("review: row %q has unparseable rules", r.Name)
				}
				v.Rules = model.SplitRules(text)
			}
		}
		values = append(values, v)
	}
	return values, nil
}
