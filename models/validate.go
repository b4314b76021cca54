package models

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dixis/dixis/pkg"
)

// DateLayout is the accepted format for date query parameters and fields.
const DateLayout = "2006-01-02"

func maxLen(v pkg.ValidationErrors, field, s string, n int) {
	if utf8.RuneCountInString(s) > n {
		v.Add(field, fmt.Sprintf("must not be longer than %d characters", n))
	}
}

func required(v pkg.ValidationErrors, field, s string) bool {
	if strings.TrimSpace(s) == "" {
		v.Add(field, "is required")
		return false
	}
	return true
}

func oneOf(v pkg.ValidationErrors, field, s string, allowed ...string) {
	for _, a := range allowed {
		if s == a {
			return
		}
	}
	v.Add(field, "must be one of: "+strings.Join(allowed, ", "))
}

func nonNegative(v pkg.ValidationErrors, field string, f float64) {
	if f < 0 {
		v.Add(field, "must be at least 0")
	}
}

func between(v pkg.ValidationErrors, field string, f, lo, hi float64) {
	if f < lo || f > hi {
		v.Add(field, fmt.Sprintf("must be between %g and %g", lo, hi))
	}
}

func validURL(v pkg.ValidationErrors, field, s string) {
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		v.Add(field, "must be a valid URL")
	}
}

func validEmail(v pkg.ValidationErrors, field, s string) {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		v.Add(field, "must be a valid email address")
	}
}

func trimPtr(p *string) {
	if p != nil {
		*p = strings.TrimSpace(*p)
	}
}

func trimOpt(o *Optional[string]) {
	if o.Value != nil {
		*o.Value = strings.TrimSpace(*o.Value)
	}
}

// ParseDate parses a YYYY-MM-DD value in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

// SortSpec is a whitelisted ORDER BY column with direction.
type SortSpec struct {
	Column string
	Desc   bool
}

// SQL renders the ORDER BY clause body.
func (s SortSpec) SQL() string {
	if s.Desc {
		return s.Column + " DESC"
	}
	return s.Column + " ASC"
}

// ResolveSort maps a requested sort key to a column via allowed. An empty
// key selects fallback. Unknown keys and directions are validation errors.
func ResolveSort(key, dir string, allowed map[string]string, fallback string, fallbackDesc bool) (SortSpec, error) {
	if key == "" {
		key = fallback
	}
	col, ok := allowed[key]
	if !ok {
		return SortSpec{}, pkg.ValidationErrors{"sort_by": "is not a sortable field"}
	}

	spec := SortSpec{Column: col, Desc: fallbackDesc}
	switch strings.ToLower(dir) {
	case "":
	case "asc":
		spec.Desc = false
	case "desc":
		spec.Desc = true
	default:
		return SortSpec{}, pkg.ValidationErrors{"sort_direction": "must be asc or desc"}
	}
	return spec, nil
}

func indexed(list string, i int, field string) string {
	if field == "" {
		return fmt.Sprintf("%s.%d", list, i)
	}
	return fmt.Sprintf("%s.%d.%s", list, i, field)
}

// ValidateOneOf checks a query value against allowed; empty values pass.
func ValidateOneOf(field, value string, allowed ...string) error {
	if value == "" {
		return nil
	}
	v := pkg.ValidationErrors{}
	oneOf(v, field, value, allowed...)
	return v.Err()
}
