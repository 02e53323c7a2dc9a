package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/meetingmind/version"
)

// InfoResponse is the /info body.
type InfoResponse struct {
	Service   string            `json:"service"`
	Build     version.Info      `json:"build"`
	Endpoints map[string]string `json:"endpoints"`
	Uptime    string            `json:"uptime"`
	Timestamp time.Time         `json:"timestamp"`
}

// Info describes the service, its build and the named API routes.
func Info(service string, endpoints map[string]string) gin.HandlerFunc {
	build := version.GetVersionInfo()
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, InfoResponse{
			Service:   service,
			Build:     build,
			Endpoints: endpoints,
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			Timestamp: time.Now().UTC(),
		})
	}
}

func Version() gin.HandlerFunc {
	return func(c *gin.Context) { c.JSON(http.StatusOK, version.GetVersionInfo()) }
}

// Metrics mounts a Prometheus handler.
func Metrics(h http.Handler) gin.HandlerFunc { return gin.WrapH(h) }
