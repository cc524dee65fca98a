// Package property infers semantic types for front matter values and converts
// them to and from the strings shown in card editors.
package property

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Type is the semantic type of a card property. It decides which editor a
// property uses and how its value is rendered.
type Type string

const (
	Checkbox Type = "checkbox"
	Date     Type = "date"
	DateTime Type = "datetime"
	Number   Type = "number"
	Tags     Type = "tags"
	List     Type = "list"
	Text     Type = "text"
)

// Types lists every property type in a stable order.
var Types = []Type{Checkbox, Date, DateTime, Number, Tags, List, Text}

var (
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(:\d{2})?(\.\d{3})?([+-]\d{2}:\d{2}|Z)?$`)
	numberPattern   = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// Infer returns the property type for value. The property name is used as a
// hint when the value itself is ambiguous or absent. Infer never fails; any
// shape it does not recognise is Text.
func Infer(value any, name string) Type {
	if value == nil {
		if t, ok := hintFromName(name, true); ok {
			return t
		}
		return Text
	}

	switch v := value.(type) {
	case bool:
		return Checkbox
	case string:
		return inferString(v, name)
	}

	if IsNumber(value) {
		return Number
	}

	if IsList(value) {
		if strings.Contains(strings.ToLower(name), "tag") {
			return Tags
		}
		return List
	}

	return Text
}

func inferString(v, name string) Type {
	switch {
	case datePattern.MatchString(v):
		return Date
	case dateTimePattern.MatchString(v):
		return DateTime
	case numberPattern.MatchString(v):
		return Number
	case v == "true" || v == "false":
		return Checkbox
	}

	if t, ok := hintFromName(name, false); ok {
		return t
	}
	return Text
}

// hintFromName maps keywords in a property name to a type. Checkbox hints only
// apply when the value is absent; a string value named "done" stays Text.
func hintFromName(name string, absent bool) (Type, bool) {
	lower := strings.ToLower(name)
	if lower == "" {
		return "", false
	}

	switch {
	case strings.Contains(lower, "date"),
		strings.Contains(lower, "due"),
		strings.Contains(lower, "deadline"):
		return Date, true
	case strings.Contains(lower, "time"):
		return DateTime, true
	case strings.Contains(lower, "tag"):
		return Tags, true
	}

	if absent {
		for _, kw := range []string{"done", "complete", "checked"} {
			if strings.Contains(lower, kw) {
				return Checkbox, true
			}
		}
	}

	return "", false
}

// Format renders value for display in a card.
func Format(value any, t Type) string {
	if value == nil {
		return ""
	}

	switch t {
	case Checkbox:
		if b, ok := value.(bool); ok {
			if b {
				return "✓"
			}
			return ""
		}
		if String(value) == "true" {
			return "✓"
		}
		return ""
	case Date, DateTime:
		if ts, ok := value.(time.Time); ok {
			return ts.UTC().Format("2006-01-02")
		}
		return String(value)
	case Tags, List:
		if IsList(value) {
			return strings.Join(Elements(value), ", ")
		}
		return String(value)
	case Number:
		return String(value)
	default:
		switch value.(type) {
		case map[string]any, []any, []string:
			data, err := json.Marshal(value)
			if err != nil {
				return String(value)
			}
			return string(data)
		}
		return String(value)
	}
}

// Parse converts edited text back into a property value. original is the
// value before editing and only decides whether empty input becomes an empty
// list or an absent value.
func Parse(text string, t Type, original any) any {
	if strings.TrimSpace(text) == "" {
		if IsList(original) {
			return []any{}
		}
		return nil
	}

	switch t {
	case Checkbox:
		return text == "true" || text == "✓" || text == "checked"
	case Number:
		n, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil
		}
		return n
	case Date, DateTime:
		return text
	case Tags, List:
		return SplitList(text)
	default:
		return text
	}
}

// SplitList splits comma separated input, trimming each element and dropping
// empty ones.
func SplitList(text string) []any {
	parts := strings.Split(text, ",")
	out := make([]any, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// IsNumber reports whether value holds a Go numeric type.
func IsNumber(value any) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

// IsList reports whether value is an ordered list of primitives.
func IsList(value any) bool {
	switch value.(type) {
	case []any, []string:
		return true
	}
	return false
}

// Elements returns the stringified elements of a list value, or nil.
func Elements(value any) []string {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, String(item))
		}
		return out
	}
	return nil
}

// String coerces any property value to its plain string form. Lists are
// joined with commas, maps are JSON encoded and nil becomes "".
func String(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format(time.RFC3339)
	case []string, []any:
		return strings.Join(Elements(v), ",")
	case map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}

	if IsNumber(value) {
		if f, ok := toFloat(value); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	data, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return strings.Trim(string(data), `"`)
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	}
	return 0, false
}
