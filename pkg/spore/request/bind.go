package request

import (
	"strings"

	"github.com/tansive/spore/pkg/spore/spec"
)

// Names of params that can be filled from client state.
const (
	ParamAccountID = "account_id"
	ParamFormat    = "format"
)

// State is the client state the binder reads.
type State struct {
	BaseURL   string
	AccountID string
	Format    string
}

// Bind resolves method name against sp using args and st.
//
// Required params are placed first in declared order. A missing required
// param is taken from st when it is account_id or format, otherwise the call
// fails. The remaining args follow in caller order. A param whose name
// appears as a :name placeholder in the path template is substituted into the
// path instead of being added to Params.
func Bind(name string, sp *spec.Spec, args *Args, st State) (*Context, error) {
	ms, ok := sp.Method(name)
	if !ok {
		return nil, ErrUnknownMethod.Msg("unknown method: " + name).With("method", name)
	}

	format := st.Format
	if v, present := args.Get(ParamFormat); present && v != nil {
		if f, _, err := FormatValue(v); err == nil && f != "" {
			format = f
		}
	}

	b := binder{
		method:   name,
		template: ms.Path,
		urlPath:  ms.Path,
		params:   NewParams(),
	}

	placed := make(map[string]bool, len(ms.RequiredParams))
	for _, param := range ms.RequiredParams {
		var value any
		if args.Present(param) {
			value, _ = args.Get(param)
		} else {
			switch {
			case param == ParamAccountID && st.AccountID != "":
				value = st.AccountID
			case param == ParamFormat:
				value = format
			default:
				return nil, ErrMissingRequiredParam.
					Msg("missing required parameter " + param + " for method " + name).
					With("method", name).
					With("param", param)
			}
		}
		if err := b.insert(param, value); err != nil {
			return nil, err
		}
		placed[param] = true
	}

	var err error
	args.Each(func(key string, value any) {
		if err != nil || placed[key] {
			return
		}
		err = b.insert(key, value)
	})
	if err != nil {
		return nil, err
	}

	return &Context{
		Method:  name,
		Verb:    ms.Verb(),
		Path:    st.BaseURL + b.urlPath,
		URLPath: b.urlPath,
		Params:  b.params,
		RawBody: b.params.Encode(),
		Format:  format,
	}, nil
}

type binder struct {
	method   string
	template string
	urlPath  string
	params   *Params
}

func (b *binder) insert(name string, v any) error {
	value, skip, err := FormatValue(v)
	if err != nil {
		return ErrInvalidParam.MsgErr("cannot encode parameter "+name+" for method "+b.method, err).
			With("method", b.method).
			With("param", name)
	}
	if skip {
		return nil
	}
	if hasPlaceholder(b.template, name) {
		b.urlPath = replacePlaceholder(b.urlPath, name, value)
		return nil
	}
	b.params.Set(name, value)
	return nil
}

func isNameByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// placeholderAt reports whether ":name" starts at i in s and is not the
// prefix of a longer placeholder.
func placeholderAt(s string, i int, name string) bool {
	end := i + 1 + len(name)
	if end > len(s) || s[i] != ':' || s[i+1:end] != name {
		return false
	}
	return end == len(s) || !isNameByte(s[end])
}

func hasPlaceholder(template, name string) bool {
	if name == "" {
		return false
	}
	for i := strings.IndexByte(template, ':'); i >= 0; {
		if placeholderAt(template, i, name) {
			return true
		}
		next := strings.IndexByte(template[i+1:], ':')
		if next < 0 {
			break
		}
		i += 1 + next
	}
	return false
}

func replacePlaceholder(s, name, value string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		if placeholderAt(s, i, name) {
			b.WriteString(value)
			i += 1 + len(name)
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}
