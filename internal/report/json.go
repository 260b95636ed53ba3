package report

import (
	"encoding/json"

	"github.com/nao1215/linkaudit/internal/model"
)

// formatJSON marshals the result with two-space indentation and a
// trailing newline.
func (f *Formatter) formatJSON(result *model.ExtractionResult) (string, error) {
	data, err := MarshalResult(result)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// MarshalResult returns the indented JSON document of result, ending with
// a newline. Storage and formatting share it so saved files and printed
// output are identical.
func MarshalResult(result *model.ExtractionResult) ([]byte, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
