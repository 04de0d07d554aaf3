package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// NA is the sentinel stored for optional string attributes that the
// provider did not report.
const NA = "N/A"

// Field is one named attribute of a snapshot record, in table column
// order. List fields get order-insensitive comparison during
// reconciliation.
type Field struct {
	Column string
	Value  any
	List   bool
}

// Coerce renders any scalar attribute as a string. Every snapshot value
// is persisted and compared in this form, so 0 and "0" are the same
// value, as are true and "true". Changing this changes diff semantics.
func Coerce(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case []string:
		return strings.Join(x, ",")
	default:
		return fmt.Sprintf("%v", x)
	}
}

// Truncate trims s to at most n bytes to satisfy the column limits of
// the backing tables. Truncation happens at extraction time; later
// comparisons always see post-truncation values.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// SplitList reverses the comma-joined list representation produced by
// Coerce, trimming whitespace around each element.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// ListsEqual compares two list values ignoring element order.
func ListsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if strings.TrimSpace(as[i]) != strings.TrimSpace(bs[i]) {
			return false
		}
	}
	return true
}
