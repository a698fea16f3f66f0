package fields

import (
	"sort"
	"strconv"
)

// ArgsFromMap collects the values keyed arg0, arg1, ... in order, stopping
// at the first missing index.
func ArgsFromMap(m map[string]any) []any {
	var out []any
	for i := 0; ; i++ {
		v, ok := m[argKey(i)]
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

// Normalize repairs form state produced by path-based form libraries. A map
// whose keys are exactly "0".."n-1" becomes a slice, and numeric keys left
// next to named keys (a variant whose option changed) are dropped. Other
// values are returned as they are, with maps and slices normalized
// recursively.
func Normalize(v any) any {
	switch x := v.(type) {
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Normalize(e)
		}
		return out
	case map[string]any:
		var numeric []int
		named := 0
		for k := range x {
			if n, ok := numericKey(k); ok {
				numeric = append(numeric, n)
			} else {
				named++
			}
		}
		if len(numeric) > 0 && named == 0 {
			sort.Ints(numeric)
			consecutive := true
			for i, n := range numeric {
				if n != i {
					consecutive = false
					break
				}
			}
			if consecutive {
				out := make([]any, len(numeric))
				for i := range out {
					out[i] = Normalize(x[strconv.Itoa(i)])
				}
				return out
			}
		}
		out := make(map[string]any, len(x))
		for k, e := range x {
			if _, ok := numericKey(k); ok && named > 0 {
				continue
			}
			out[k] = Normalize(e)
		}
		return out
	default:
		return v
	}
}

func numericKey(k string) (int, bool) {
	if k == "" {
		return 0, false
	}
	for _, r := range k {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(k)
	return n, err == nil && strconv.Itoa(n) == k
}
