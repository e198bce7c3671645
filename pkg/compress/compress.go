// Package compress shrinks oversized tool results while keeping enough head
// and tail context to stay useful to a model.
//
// Invariants:
// - Results at or under the limit pass through untouched.
// - Every compressed result records Truncated and OriginalLength metadata.
package compress

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/danang/perkakas/pkg/tool"
)

// Strategy selects how oversized content is shortened.
type Strategy string

const (
	// StrategyEnd keeps a head slice and appends a truncation marker.
	StrategyEnd Strategy = "end"
	// StrategyMiddle keeps head and tail halves around an omission marker.
	StrategyMiddle Strategy = "middle"
	// StrategySmart sniffs the content shape (JSON, line-oriented text) and
	// applies structure-preserving truncation before falling back to middle.
	StrategySmart Strategy = "smart"
)

// IsValidStrategy checks if a strategy name is known.
func IsValidStrategy(s Strategy) bool {
	switch s {
	case StrategyEnd, StrategyMiddle, StrategySmart:
		return true
	}
	return false
}

const (
	endMarker = "\n... [output truncated]"

	keepLines    = 10
	maxArrayRun  = 10
	maxObjectRun = 20
	sampleSize   = 5
	maxJSONStr   = 200
)

// Compress returns the result with its content shortened to roughly
// maxLength. A no-op when the content already fits or maxLength is zero.
func Compress(result tool.Result, maxLength int, strategy Strategy) tool.Result {
	if maxLength <= 0 || len(result.Content) <= maxLength {
		return result
	}

	original := len(result.Content)

	var content string
	switch strategy {
	case StrategyEnd:
		content = truncateEnd(result.Content, maxLength)
	case StrategySmart:
		content = truncateSmart(result.Content, maxLength)
	default:
		content = truncateMiddle(result.Content, maxLength)
	}

	log.Debug().
		Int("original", original).
		Int("compressed", len(content)).
		Str("strategy", string(strategy)).
		Msg("Result compressed")

	meta := tool.Metadata{}
	if result.Metadata != nil {
		meta = *result.Metadata
	}
	meta.Truncated = true
	meta.OriginalLength = original

	result.Content = content
	result.Metadata = &meta
	return result
}

func truncateEnd(content string, maxLength int) string {
	return content[:maxLength] + endMarker
}

func truncateMiddle(content string, maxLength int) string {
	omitted := len(content) - maxLength
	marker := fmt.Sprintf("\n... [%d characters omitted] ...\n", omitted)
	half := maxLength / 2
	return content[:half] + marker + content[len(content)-(maxLength-half):]
}

func truncateSmart(content string, maxLength int) string {
	trimmed := strings.TrimSpace(content)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') && json.Valid([]byte(trimmed)) {
		if out, ok := truncateJSON(trimmed, maxLength); ok {
			return out
		}
	}

	if lines := strings.Split(content, "\n"); len(lines) > 2*keepLines {
		out := truncateLines(lines)
		if len(out) <= maxLength {
			return out
		}
		return truncateMiddle(out, maxLength)
	}

	return truncateMiddle(content, maxLength)
}

// truncateJSON re-renders a JSON document with long strings shortened and
// wide collections collapsed to head/tail samples.
func truncateJSON(content string, maxLength int) (string, bool) {
	var value interface{}
	if err := json.Unmarshal([]byte(content), &value); err != nil {
		return "", false
	}

	data, err := json.Marshal(collapseValue(value))
	if err != nil {
		return "", false
	}

	out := string(data)
	if len(out) > maxLength {
		out = truncateMiddle(out, maxLength)
	}
	return out, true
}

func collapseValue(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		if len(v) > maxJSONStr {
			return v[:maxJSONStr] + fmt.Sprintf("... [%d chars total]", len(v))
		}
		return v
	case []interface{}:
		return collapseArray(v)
	case map[string]interface{}:
		return collapseObject(v)
	}
	return value
}

func collapseArray(arr []interface{}) []interface{} {
	if len(arr) <= maxArrayRun {
		out := make([]interface{}, len(arr))
		for i, elem := range arr {
			out[i] = collapseValue(elem)
		}
		return out
	}

	out := make([]interface{}, 0, 2*sampleSize+1)
	for _, elem := range arr[:sampleSize] {
		out = append(out, collapseValue(elem))
	}
	out = append(out, fmt.Sprintf("... [%d items omitted] ...", len(arr)-2*sampleSize))
	for _, elem := range arr[len(arr)-sampleSize:] {
		out = append(out, collapseValue(elem))
	}
	return out
}

func collapseObject(obj map[string]interface{}) map[string]interface{} {
	if len(obj) <= maxObjectRun {
		out := make(map[string]interface{}, len(obj))
		for k, v := range obj {
			out[k] = collapseValue(v)
		}
		return out
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]interface{}, 2*sampleSize+1)
	for _, k := range keys[:sampleSize] {
		out[k] = collapseValue(obj[k])
	}
	for _, k := range keys[len(keys)-sampleSize:] {
		out[k] = collapseValue(obj[k])
	}
	out["..."] = fmt.Sprintf("[%d keys omitted]", len(obj)-2*sampleSize)
	return out
}

func truncateLines(lines []string) string {
	omitted := len(lines) - 2*keepLines
	out := make([]string, 0, 2*keepLines+1)
	out = append(out, lines[:keepLines]...)
	out = append(out, fmt.Sprintf("... [%d lines omitted] ...", omitted))
	out = append(out, lines[len(lines)-keepLines:]...)
	return strings.Join(out, "\n")
}
