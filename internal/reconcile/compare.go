package reconcile

import (
	"github.com/cloudbeacon/driftlog/pkg/types"
)

// fieldEqual compares a stored value against an incoming field under
// the stringified-scalar policy: lists compare order-insensitively,
// everything else as coerced strings. Stored values are already
// post-truncation, so no re-truncation happens here.
func fieldEqual(stored string, f types.Field) bool {
	if f.List {
		return types.ListsEqual(types.SplitList(stored), listValue(f.Value))
	}
	return stored == types.Coerce(f.Value)
}

func listValue(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case []string:
		return x
	default:
		return types.SplitList(types.Coerce(v))
	}
}
