package request

import (
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Args are caller supplied arguments for one invocation. Order is kept so
// that params not declared by the method reach the wire in caller order.
type Args struct {
	m *orderedmap.OrderedMap[string, any]
}

// NewArgs builds Args from alternating key/value pairs. A trailing key
// without a value is ignored.
func NewArgs(kv ...any) *Args {
	a := &Args{m: orderedmap.New[string, any]()}
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			a.Set(k, kv[i+1])
		}
	}
	return a
}

// ArgsFromMap builds Args from a map with keys in lexicographic order.
func ArgsFromMap(m map[string]any) *Args {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	a := NewArgs()
	for _, k := range keys {
		a.Set(k, m[k])
	}
	return a
}

// Set adds or replaces an argument and returns a for chaining.
func (a *Args) Set(key string, value any) *Args {
	if a.m == nil {
		a.m = orderedmap.New[string, any]()
	}
	a.m.Set(key, value)
	return a
}

func (a *Args) Get(key string) (any, bool) {
	if a == nil || a.m == nil {
		return nil, false
	}
	return a.m.Get(key)
}

// Present reports whether key was supplied with a non-nil value.
func (a *Args) Present(key string) bool {
	v, ok := a.Get(key)
	return ok && v != nil
}

func (a *Args) Len() int {
	if a == nil || a.m == nil {
		return 0
	}
	return a.m.Len()
}

// Each calls fn for every argument in caller order.
func (a *Args) Each(fn func(key string, value any)) {
	if a == nil || a.m == nil {
		return
	}
	for pair := a.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}
