package api

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"

	"github.com/utafrali/bookshelf/pkg/pagination"
)

// Params is a query parameter set. Values may be strings, numbers, bools,
// pointers to those, or slices; Encode drops what carries no value.
type Params map[string]any

// Encode sanitizes p into url.Values. Nil values, empty strings and empty
// slices are omitted. Slices repeat the key once per element.
func (p Params) Encode() url.Values {
	q := url.Values{}
	for key, v := range p {
		addParam(q, key, v)
	}
	return q
}

func addParam(q url.Values, key string, v any) {
	if v == nil {
		return
	}
	switch x := v.(type) {
	case string:
		if x != "" {
			q.Add(key, x)
		}
		return
	case []string:
		for _, s := range x {
			if s != "" {
				q.Add(key, s)
			}
		}
		return
	case int:
		q.Add(key, strconv.Itoa(x))
		return
	case float64:
		q.Add(key, strconv.FormatFloat(x, 'f', -1, 64))
		return
	case bool:
		q.Add(key, strconv.FormatBool(x))
		return
	case fmt.Stringer:
		if s := x.String(); s != "" {
			q.Add(key, s)
		}
		return
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return
		}
		addParam(q, key, rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			addParam(q, key, rv.Index(i).Interface())
		}
	case reflect.String:
		addParam(q, key, rv.String())
	default:
		q.Add(key, fmt.Sprint(v))
	}
}

// window converts a pagination window into Params entries.
func window(w pagination.Window) Params {
	p := Params{}
	if w.Skip > 0 {
		p["skip"] = w.Skip
	}
	if w.Limit > 0 {
		p["limit"] = w.Limit
	}
	return p
}
