package importer

import (
	"fmt"
	"strings"
	"time"
)

// DefaultDateLayouts is the ordered date policy. Day-first numeric dates come
// before any month-first layout.
var DefaultDateLayouts = []string{
	"2-Jan-06",
	"02/01/2006",
	"02 Jan 2006",
	"Jan. 2, 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
	"2006-01-02",
}

// DateResolver parses dates against an ordered list of layouts; the first
// layout that parses wins.
type DateResolver struct {
	layouts []string
}

// NewDateResolver returns a resolver over layouts, or DefaultDateLayouts when
// none are given.
func NewDateResolver(layouts ...string) *DateResolver {
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	return &DateResolver{layouts: append([]string(nil), layouts...)}
}

// Layouts returns the configured layouts in order.
func (d *DateResolver) Layouts() []string {
	return append([]string(nil), d.layouts...)
}

// Parse returns the date at midnight UTC.
func (d *DateResolver) Parse(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, fmt.Errorf("%w: empty date", ErrInvalidDate)
	}
	for _, layout := range d.layouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, text)
}
