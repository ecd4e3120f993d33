package cache

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
)

const keyNamespace = "dashboard"

// BuildKey derives a deterministic, order-independent cache key from a
// parameter set. Canonicalization rules:
//
//   - object keys serialize lexicographically sorted
//   - array elements sort by their canonical JSON token, a stable total order
//     across mixed primitives
//   - nil values, empty strings and empty arrays are treated as absent, so an
//     omitted filter and an empty filter hash identically
//   - booleans and numbers keep distinct encodings, no coercion
//
// The canonical form is digested with xxhash64, giving the fixed format
// "dashboard:<prefix>:<16 hex chars>".
func BuildKey(prefix string, params map[string]any) string {
	raw, err := json.Marshal(canonicalize(params))
	if err != nil {
		// Params are engine-built maps of primitives; a marshal failure is a
		// programmer error. Fall back to the raw fmt form so the key is still
		// deterministic for this process.
		raw = []byte(fmt.Sprintf("%v", params))
	}
	return fmt.Sprintf("%s:%s:%016x", keyNamespace, prefix, xxhash.Sum64(raw))
}

// canonicalize returns the reduced value, or nil when the value counts as
// absent. encoding/json serializes map keys in sorted order, which covers the
// object-key rule; arrays are rebuilt as sorted raw-token lists.
func canonicalize(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return v
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return canonicalizeSlice(items)
	case []int64:
		items := make([]any, len(v))
		for i, n := range v {
			items[i] = n
		}
		return canonicalizeSlice(items)
	case []any:
		return canonicalizeSlice(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			if c := canonicalize(val); c != nil {
				out[key] = c
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return v
	}
}

func canonicalizeSlice(items []any) any {
	tokens := make([]string, 0, len(items))
	for _, item := range items {
		c := canonicalize(item)
		if c == nil {
			continue
		}
		raw, err := json.Marshal(c)
		if err != nil {
			continue
		}
		tokens = append(tokens, string(raw))
	}
	if len(tokens) == 0 {
		return nil
	}
	sort.Strings(tokens)
	return json.RawMessage("[" + strings.Join(tokens, ",") + "]")
}
