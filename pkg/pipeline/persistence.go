package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/jsonc"

	"github.com/pluqqy/crux-terminal/pkg/models"
)

// savePlaceholder is what Save produces until a saved pipeline format exists
var savePlaceholder = map[string]string{"sorry": "not yet implemented"}

// Save returns the saved form of the pipeline. No format has been settled
// yet, so this is a fixed placeholder document.
func (s *Store) Save() ([]byte, error) {
	data, err := json.Marshal(savePlaceholder)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pipeline: %w", err)
	}
	return data, nil
}

// Load replaces the pipeline with an externally supplied one. v may be a
// models.Pipeline, JSON text (comments and trailing commas allowed) as a
// string or byte slice, or any value that encodes to a JSON object. Fields
// other than "components" and "pipeline" are ignored and the content is not
// checked against the loaded components.
func (s *Store) Load(v any) error {
	var p models.Pipeline

	switch val := v.(type) {
	case models.Pipeline:
		p = val
	case *models.Pipeline:
		if val == nil {
			return fmt.Errorf("failed to load pipeline: nil pipeline")
		}
		p = *val
	case string:
		if err := json.Unmarshal(jsonc.ToJSON([]byte(val)), &p); err != nil {
			return fmt.Errorf("failed to parse pipeline: %w", err)
		}
	case []byte:
		if err := json.Unmarshal(jsonc.ToJSON(val), &p); err != nil {
			return fmt.Errorf("failed to parse pipeline: %w", err)
		}
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Errorf("failed to encode pipeline: %w", err)
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("failed to parse pipeline: %w", err)
		}
	}

	s.Replace(p)
	return nil
}
