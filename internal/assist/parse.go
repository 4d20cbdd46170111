package assist

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/kaptinlin/jsonrepair"
)

// ParseMapping extracts the JSON object from a model reply and decodes it.
// Malformed JSON is repaired once before giving up.
func ParseMapping(reply string) (map[string]string, error) {
	raw, err := extractJSON(reply)
	if err != nil {
		return nil, err
	}

	var mapping map[string]string
	err = jsoniter.UnmarshalFromString(raw, &mapping)
	if err == nil {
		return mapping, nil
	}
	decodeErr := err

	repaired, rerr := jsonrepair.JSONRepair(raw)
	if rerr != nil {
		return nil, fmt.Errorf("decode mapping: %w", decodeErr)
	}
	mapping = nil
	if err := jsoniter.UnmarshalFromString(repaired, &mapping); err != nil {
		return nil, fmt.Errorf("decode mapping: %w", decodeErr)
	}
	return mapping, nil
}

// extractJSON returns the text between the first { and the last }.
// A reply cut off before its closing brace is returned from the first {
// so the repair step can close it.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	if start == -1 {
		return "", fmt.Errorf("no JSON object found in response")
	}
	end := strings.LastIndex(s, "}")
	if end <= start {
		return s[start:], nil
	}
	return s[start : end+1], nil
}
