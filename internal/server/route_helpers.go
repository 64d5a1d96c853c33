package server

import (
	"net/http"
	"sort"
	"strings"

	"github.com/ternarybob/scrutor/internal/handlers"
)

// RouteHandler is a plain handler function.
type RouteHandler func(http.ResponseWriter, *http.Request)

// MethodRouter maps HTTP methods to handlers.
type MethodRouter map[string]RouteHandler

// RouteByMethod dispatches on r.Method. Unknown methods get a JSON 405 with
// an Allow header listing the registered ones.
func RouteByMethod(w http.ResponseWriter, r *http.Request, routes MethodRouter) {
	if handler, ok := routes[r.Method]; ok {
		handler(w, r)
		return
	}
	allowed := make([]string, 0, len(routes))
	for m := range routes {
		allowed = append(allowed, m)
	}
	sort.Strings(allowed)
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	handlers.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// PathSuffixRouter sends paths ending in Suffix to Handler.
type PathSuffixRouter struct {
	Suffix  string
	Handler RouteHandler
}

// RouteByPathSuffix handles the request with the first route whose suffix
// matches the path below prefix, ignoring a trailing slash. It reports
// whether a route matched.
func RouteByPathSuffix(w http.ResponseWriter, r *http.Request, prefix string, routes []PathSuffixRouter) bool {
	rest, ok := strings.CutPrefix(r.URL.Path, prefix)
	if !ok || rest == "" {
		return false
	}
	rest = strings.TrimSuffix(rest, "/")
	for _, route := range routes {
		if strings.HasSuffix(rest, route.Suffix) {
			route.Handler(w, r)
			return true
		}
	}
	return false
}
