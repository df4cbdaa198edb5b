package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/inquiryos/inquiry-os/internal/http/handlers"
	httpMW "github.com/inquiryos/inquiry-os/internal/http/middleware"
)

type RouterConfig struct {
	HealthHandler      *httpH.HealthHandler
	ResearchRunHandler *httpH.ResearchRunHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(otelgin.Middleware("inquiry-os"))
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.Health)
	}

	api := r.Group("/api")
	{
		if cfg.HealthHandler != nil {
			api.GET("/ping", cfg.HealthHandler.Ping)
		}

		if cfg.ResearchRunHandler != nil {
			v1 := api.Group("/v1/research-runs")
			v1.POST("", cfg.ResearchRunHandler.Create)
			v1.GET("", cfg.ResearchRunHandler.List)
			v1.GET("/:id", cfg.ResearchRunHandler.Get)
			v1.GET("/:id/detail", cfg.ResearchRunHandler.Detail)
			v1.GET("/:id/state", cfg.ResearchRunHandler.State)
			v1.POST("/:id/search-dummy", cfg.ResearchRunHandler.SearchDummy)
			v1.POST("/:id/synthesize-dummy", cfg.ResearchRunHandler.SynthesizeDummy)
			v1.POST("/:id/execute", cfg.ResearchRunHandler.Execute)
		}
	}

	return r
}
