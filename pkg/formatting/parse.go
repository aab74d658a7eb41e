package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrParseFailed is returned when no JSON value for T can be found in content.
var ErrParseFailed = errors.New("failed to parse response")

const fence = "```"

// Parse decodes model output into T. It tries, in order: the whole
// trimmed content, the body of the first ``` fence (with or without a
// json tag), and the span from the first "{" or "[" to the last matching
// closer.
func Parse[T any](content string) (T, error) {
	content = strings.TrimSpace(content)

	for _, candidate := range []string{content, fenced(content), bracketed(content)} {
		if candidate == "" {
			continue
		}
		var out T
		if json.Unmarshal([]byte(candidate), &out) == nil {
			return out, nil
		}
	}

	var zero T
	return zero, fmt.Errorf("%w: %s", ErrParseFailed, content)
}

func fenced(s string) string {
	_, rest, ok := strings.Cut(s, fence)
	if !ok {
		return ""
	}
	body, _, ok := strings.Cut(rest, fence)
	if !ok {
		return ""
	}
	body = strings.TrimPrefix(body, "json")
	return strings.TrimSpace(body)
}

func bracketed(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	closer := "}"
	if s[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(s, closer)
	if end <= start {
		return ""
	}
	return s[start : end+1]
}
