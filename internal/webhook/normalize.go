package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
)

// MinContentLength is the trimmed length a candidate field must exceed to count as content.
const MinContentLength = 20

const maxSearchDepth = 4

// ErrEmptyResponse indicates the endpoint answered with no body.
var ErrEmptyResponse = errors.New("empty webhook response")

// ContentFields are the keys searched, in priority order, for generated content.
var ContentFields = []string{
	"content",
	"research",
	"profile_research",
	"company_research",
	"output",
	"text",
	"result",
	"response",
	"message",
	"answer",
	"summary",
	"analysis",
	"data",
	"body",
}

// ExtractContent pulls the most likely piece of human-readable content out of a
// webhook body whose shape is not known in advance.
//
// JSON bodies are searched for ContentFields; JSON without a usable field is
// returned re-serialised; anything that is not JSON is returned unchanged.
func ExtractContent(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", ErrEmptyResponse
	}

	var value any
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return string(body), nil
	}

	if content, ok := findContent(value, 0); ok {
		return content, nil
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
		return s, nil
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return string(trimmed), nil
	}
	return compact.String(), nil
}

func findContent(value any, depth int) (string, bool) {
	if depth > maxSearchDepth {
		return "", false
	}
	switch v := value.(type) {
	case string:
		if len(strings.TrimSpace(v)) > MinContentLength {
			return v, true
		}
	case []any:
		for _, item := range v {
			if content, ok := findContent(item, depth+1); ok {
				return content, true
			}
		}
	case map[string]any:
		for _, field := range ContentFields {
			candidate, ok := lookupFold(v, field)
			if !ok {
				continue
			}
			if content, ok := findContent(candidate, depth+1); ok {
				return content, true
			}
		}
	}
	return "", false
}

// lookupFold prefers an exact key, then the lexically smallest case variant.
func lookupFold(m map[string]any, key string) (any, bool) {
	if val, ok := m[key]; ok {
		return val, true
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if strings.EqualFold(k, key) {
			return m[k], true
		}
	}
	return nil, false
}

// ExtractObject returns the record carried by a structured webhook body,
// unwrapping one-element arrays and "data" or "json" envelopes.
func ExtractObject(body []byte) (gjson.Result, bool) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, false
	}
	result := gjson.ParseBytes(body)
	for i := 0; i < maxSearchDepth; i++ {
		switch {
		case result.IsArray():
			items := result.Array()
			if len(items) == 0 {
				return gjson.Result{}, false
			}
			result = items[0]
		case result.IsObject():
			wrapped := false
			for _, key := range []string{"data", "json"} {
				inner := result.Get(key)
				if inner.IsObject() || inner.IsArray() {
					result = inner
					wrapped = true
					break
				}
			}
			if !wrapped {
				return result, true
			}
		default:
			return gjson.Result{}, false
		}
	}
	return result, result.IsObject()
}
