package fakeapi

import (
	"net/http"
	"strings"
	"sync"

	"github.com/utafrali/bookshelf/pkg/httputil"
)

type fault struct {
	method string
	path   string
	status int
	detail string
}

// faultInjector fails queued requests before they reach a handler.
type faultInjector struct {
	mu      sync.Mutex
	pending []fault
}

func (f *faultInjector) add(ft fault) {
	f.mu.Lock()
	f.pending = append(f.pending, ft)
	f.mu.Unlock()
}

// take removes and returns the first fault matching the request.
func (f *faultInjector) take(method, path string) (fault, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path = strings.TrimSuffix(path, "/")
	for i, ft := range f.pending {
		if ft.method == method && ft.path == path {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			return ft, true
		}
	}
	return fault{}, false
}

func (f *faultInjector) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ft, ok := f.take(r.Method, r.URL.Path); ok {
			httputil.WriteJSON(w, ft.status, httputil.ErrorResponse{Detail: ft.detail, Code: "INJECTED"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
