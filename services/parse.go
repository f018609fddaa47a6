package services

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

var ErrMalformedOutput = errors.New("malformed model output")

var fenceReplacer = strings.NewReplacer("```json", "", "```", "")

// stripFences removes Markdown code fences the model wraps around JSON.
func stripFences(raw string) string {
	return strings.TrimSpace(fenceReplacer.Replace(raw))
}

// decodeModelJSON parses model text into v. Anything other than one JSON
// value after fence stripping is ErrMalformedOutput.
func decodeModelJSON(raw string, v interface{}) error {
	body := stripFences(raw)
	if body == "" {
		return fmt.Errorf("%w: empty", ErrMalformedOutput)
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return nil
}
