package pagination

import (
	"net/http"
	"net/url"
	"strconv"
)

// Window is an offset window expressed as skip/limit query parameters.
type Window struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// Params holds page/limit pagination parameters.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// DefaultParams returns page 1 with 20 items.
func DefaultParams() Params {
	return Params{Page: 1, Limit: 20}
}

// WindowFromRequest reads skip and limit. Out of range values fall back to
// the defaults rather than failing the request.
func WindowFromRequest(r *http.Request, defaultLimit, maxLimit int) Window {
	q := r.URL.Query()
	w := Window{Skip: 0, Limit: defaultLimit}

	if v, err := strconv.Atoi(q.Get("skip")); err == nil && v >= 0 {
		w.Skip = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 && v <= maxLimit {
		w.Limit = v
	}
	return w
}

// FromRequest extracts page and limit parameters from an HTTP request.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()
	q := r.URL.Query()

	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 && v <= 100 {
		p.Limit = v
	}

	p.Offset = (p.Page - 1) * p.Limit
	return p
}

// Encode writes the window into q. Zero values are omitted so the server
// applies its own defaults.
func (w Window) Encode(q url.Values) {
	if w.Skip > 0 {
		q.Set("skip", strconv.Itoa(w.Skip))
	}
	if w.Limit > 0 {
		q.Set("limit", strconv.Itoa(w.Limit))
	}
}

// Encode writes page and limit into q, omitting zero values.
func (p Params) Encode(q url.Values) {
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
}

// Slice returns the part of items covered by the window.
func Slice[T any](items []T, w Window) []T {
	if w.Skip >= len(items) {
		return []T{}
	}
	end := len(items)
	if w.Limit > 0 && w.Skip+w.Limit < end {
		end = w.Skip + w.Limit
	}
	return items[w.Skip:end]
}

// Result is a page of items with the total count, in the shape list
// endpoints return.
type Result[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
}

// NewResult pages all items according to params.
func NewResult[T any](all []T, params Params) Result[T] {
	return Result[T]{
		Items:      Slice(all, Window{Skip: params.Offset, Limit: params.Limit}),
		TotalCount: len(all),
		Page:       params.Page,
		Limit:      params.Limit,
	}
}

// TotalPages returns how many pages of Limit cover TotalCount.
func (r Result[T]) TotalPages() int {
	if r.Limit <= 0 {
		return 0
	}
	n := r.TotalCount / r.Limit
	if r.TotalCount%r.Limit > 0 {
		n++
	}
	return n
}

// HasNext reports whether another page follows.
func (r Result[T]) HasNext() bool {
	return r.Page < r.TotalPages()
}
