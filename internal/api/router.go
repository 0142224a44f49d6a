// Package api exposes the journal service over HTTP.
//
// Users are identified by the X-User-ID header, which only the fronting auth
// proxy may set. The service must not be reachable except through that
// proxy. Setting Dependencies.ProxySecret makes every /api request prove it
// came from the proxy by carrying the shared secret in X-Proxy-Secret.
package api

import (
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/spacesedan/mindnest/config"
	"github.com/spacesedan/mindnest/internal/crisis"
	"github.com/spacesedan/mindnest/internal/journal"
)

type Dependencies struct {
	Journal *journal.Service
	Crisis  *crisis.Catalog
	Google  config.GoogleSettings
	// ReflectorHealthy is nil when no hosted reflector is configured.
	ReflectorHealthy *atomic.Bool
	ProxySecret      string
}

func NewRouter(deps Dependencies) *gin.Engine {
	h := &Handler{
		journal: deps.Journal,
		crisis:  deps.Crisis,
		google:  deps.Google,
		healthy: deps.ReflectorHealthy,
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", h.Health)

	api := r.Group("/api", identify(deps.ProxySecret))
	{
		api.POST("/journals", h.SubmitJournal)
		api.GET("/journals", h.ListJournals)
		api.GET("/mood", h.MoodData)
		api.GET("/dashboard", h.Dashboard)
		api.POST("/analyze", h.Analyze)
		api.GET("/crisis/resources", h.CrisisResources)
		api.GET("/config/google", h.GoogleStatus)
	}

	return r
}
