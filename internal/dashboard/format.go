package dashboard

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TimeRange is the history window selected on the patient page.
type TimeRange string

const (
	Range1Week   TimeRange = "1week"
	Range2Weeks  TimeRange = "2weeks"
	Range1Month  TimeRange = "1month"
	Range3Months TimeRange = "3months"
)

// ParseTimeRange falls back to one week for unknown values.
func ParseTimeRange(s string) TimeRange {
	switch TimeRange(s) {
	case Range2Weeks, Range1Month, Range3Months:
		return TimeRange(s)
	}
	return Range1Week
}

func (r TimeRange) Days() int {
	switch r {
	case Range2Weeks:
		return 14
	case Range1Month:
		return 30
	case Range3Months:
		return 90
	}
	return 7
}

// ParseRiskFactors turns the raw risk-factor payload into display strings.
// A JSON array yields its items, an object its values ordered by key, any
// other JSON value a single entry. A payload that is not JSON is shown as is.
func ParseRiskFactors(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var parsed interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return []string{raw}
	}
	switch v := parsed.(type) {
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, stringify(item))
		}
		return out
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]string, 0, len(keys))
		for _, k := range keys {
			out = append(out, stringify(v[k]))
		}
		return out
	}
	return []string{stringify(parsed)}
}

func stringify(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// TimeAgo renders the age of t relative to now, e.g. "8 min ago".
func TimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return "Just now"
	}
	minutes := int(now.Sub(t) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	if minutes < 60 {
		return fmt.Sprintf("%d min ago", minutes)
	}
	hours := minutes / 60
	if hours > 1 {
		return fmt.Sprintf("%d hrs ago", hours)
	}
	return "1 hr ago"
}

// Initials returns the first two letters of the name, upper-cased.
func Initials(name string) string {
	r := []rune(strings.TrimSpace(name))
	if len(r) > 2 {
		r = r[:2]
	}
	return strings.ToUpper(string(r))
}

func capitalize(s string) string {
	if s == "" {
		return "N/A"
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

func formatMeasure(v float64) string {
	if v == 0 {
		return "--"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optionalInt(v *int) string {
	if v == nil {
		return "--"
	}
	return strconv.Itoa(*v)
}
