package request

import (
	"reflect"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cast"
)

// json writes compact JSON with sorted map keys. Numbers keep their exact
// digits and HTML characters are not escaped.
var json = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// FormatValue converts an argument to its wire form. skip is true for nil,
// the empty string and empty lists or maps. Lists, maps and structs become
// compact JSON; scalars are coerced to strings.
func FormatValue(v any) (value string, skip bool, err error) {
	if v == nil {
		return "", true, nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", true, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			s := string(rv.Bytes())
			return s, s == "", nil
		}
		if rv.Len() == 0 {
			return "", true, nil
		}
		return compactJSON(rv.Interface())
	case reflect.Array:
		if rv.Len() == 0 {
			return "", true, nil
		}
		return compactJSON(rv.Interface())
	case reflect.Map:
		if rv.Len() == 0 {
			return "", true, nil
		}
		return compactJSON(rv.Interface())
	case reflect.Struct:
		return compactJSON(rv.Interface())
	}

	s, err := cast.ToStringE(rv.Interface())
	if err != nil {
		return "", false, err
	}
	return s, s == "", nil
}

func compactJSON(v any) (string, bool, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", false, err
	}
	return string(data), false, nil
}
