package property

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

const dateTimeLayout = "2006-01-02T15:04:05"

// ParseInput is Parse for text typed by a user. Dates are accepted in any
// layout dateparse understands and stored as ISO strings; input that cannot
// be read as the property's type is an error instead of a cleared value.
func ParseInput(text string, t Type, original any) (any, error) {
	if text == "" {
		return Parse(text, t, original), nil
	}

	switch t {
	case Date, DateTime:
		ts, err := dateparse.ParseLocal(text)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", t, text, err)
		}
		if t == Date {
			return ts.Format(time.DateOnly), nil
		}
		return ts.Format(dateTimeLayout), nil
	case Number:
		v := Parse(text, t, original)
		if v == nil {
			return nil, fmt.Errorf("invalid number %q", text)
		}
		return v, nil
	default:
		return Parse(text, t, original), nil
	}
}
