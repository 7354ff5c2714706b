package cube

import (
	"fmt"
	"strconv"
	"strings"
)

// Cards is a flat view of FITS header cards, keyed by upper-case name.
type Cards map[string]any

// Float returns a numeric card value.
func (c Cards) Float(name string) (float64, bool) {
	switch v := c[name].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// FloatOr returns a numeric card value or def when the card is absent.
func (c Cards) FloatOr(name string, def float64) float64 {
	if v, ok := c.Float(name); ok {
		return v
	}
	return def
}

// String returns a string card value, trimmed.
func (c Cards) String(name string) string {
	switch v := c[name].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Has reports whether the card is present.
func (c Cards) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// axisCard returns the name of an axis keyword, e.g. axisCard("CRVAL", 3) == "CRVAL3".
func axisCard(prefix string, axis int) string {
	return prefix + strconv.Itoa(axis)
}
