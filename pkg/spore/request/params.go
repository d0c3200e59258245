package request

import (
	"net/url"
	"sort"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Params is an insertion ordered string map. Setting an existing key
// replaces the value in place.
type Params struct {
	m *orderedmap.OrderedMap[string, string]
}

// NewParams returns an empty Params.
func NewParams() *Params {
	return &Params{m: orderedmap.New[string, string]()}
}

func (p *Params) init() {
	if p.m == nil {
		p.m = orderedmap.New[string, string]()
	}
}

func (p *Params) Set(key, value string) {
	p.init()
	p.m.Set(key, value)
}

func (p *Params) Get(key string) (string, bool) {
	if p == nil || p.m == nil {
		return "", false
	}
	return p.m.Get(key)
}

func (p *Params) Len() int {
	if p == nil || p.m == nil {
		return 0
	}
	return p.m.Len()
}

// Keys returns the keys in insertion order.
func (p *Params) Keys() []string {
	keys := make([]string, 0, p.Len())
	p.Each(func(k, _ string) {
		keys = append(keys, k)
	})
	return keys
}

// Each calls fn for every pair in insertion order.
func (p *Params) Each(fn func(key, value string)) {
	if p == nil || p.m == nil {
		return
	}
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Reset removes every entry.
func (p *Params) Reset() {
	if p == nil {
		return
	}
	p.m = orderedmap.New[string, string]()
}

// Clone returns an independent copy.
func (p *Params) Clone() *Params {
	out := NewParams()
	p.Each(out.Set)
	return out
}

// Map returns the entries as a plain map.
func (p *Params) Map() map[string]string {
	out := make(map[string]string, p.Len())
	p.Each(func(k, v string) {
		out[k] = v
	})
	return out
}

// Sorted returns "key=value" strings ordered by key.
func (p *Params) Sorted() []string {
	out := make([]string, 0, p.Len())
	p.Each(func(k, v string) {
		out = append(out, k+"="+v)
	})
	sort.Strings(out)
	return out
}

// Encode joins "key=value" pairs in insertion order with "&" without any
// escaping. It is the raw body sent by POST and PUT.
func (p *Params) Encode() string {
	parts := make([]string, 0, p.Len())
	p.Each(func(k, v string) {
		parts = append(parts, k+"="+v)
	})
	return strings.Join(parts, "&")
}

// Query returns the params as url.Values for a query string.
func (p *Params) Query() url.Values {
	q := make(url.Values, p.Len())
	p.Each(func(k, v string) {
		q.Set(k, v)
	})
	return q
}
