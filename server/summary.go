package server

import (
	"cmp"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/meetingmind/component"
)

// Operational paths sort after the API in the startup summary.
var systemPaths = map[string]bool{
	"/health":       true,
	"/health/live":  true,
	"/health/ready": true,
	"/info":         true,
	"/version":      true,
	"/metrics":      true,
}

func isSystemPath(path string) bool { return systemPaths[path] }

var methodRank = map[string]int{"GET": 0, "POST": 1, "PUT": 2, "PATCH": 3, "DELETE": 4}

func methodOrder(method string) int {
	if r, ok := methodRank[method]; ok {
		return r
	}
	return len(methodRank)
}

// summarizeRoutes lists API routes before system routes, then by path and
// method.
func summarizeRoutes(in gin.RoutesInfo) []component.Route {
	sorted := slices.Clone(in)
	slices.SortFunc(sorted, func(a, b gin.RouteInfo) int {
		sa, sb := isSystemPath(a.Path), isSystemPath(b.Path)
		if sa != sb {
			if sa {
				return 1
			}
			return -1
		}
		return cmp.Or(
			strings.Compare(a.Path, b.Path),
			cmp.Compare(methodOrder(a.Method), methodOrder(b.Method)),
		)
	})

	out := make([]component.Route, len(sorted))
	for i, r := range sorted {
		h := formatHandlerName(r.Handler)
		if isSystemPath(r.Path) {
			h += " (system)"
		}
		out[i] = component.Route{Method: r.Method, Path: r.Path, Handler: h}
	}
	return out
}

// formatHandlerName shortens gin's handler symbol:
//
//	github.com/kbukum/meetingmind/server.(*AIHandler).Analyze-fm  -> AIHandler.Analyze
//	github.com/kbukum/meetingmind/server.(*Server).RegisterAPI.func1 -> registerapi
func formatHandlerName(symbol string) string {
	name := strings.TrimSuffix(symbol, "-fm")
	name = name[strings.LastIndex(name, "/")+1:]
	name = strings.NewReplacer("(*", "", ")", "").Replace(name)

	parts := strings.Split(name, ".")
	if strings.HasPrefix(parts[len(parts)-1], "func") {
		for i := len(parts) - 1; i >= 0; i-- {
			if !strings.HasPrefix(parts[i], "func") {
				return strings.ToLower(parts[i])
			}
		}
	}
	if len(parts) > 1 && parts[0] == strings.ToLower(parts[0]) {
		parts = parts[1:]
	}
	return strings.Join(parts, ".")
}
