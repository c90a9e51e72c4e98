package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/brown2020/ikigaifinder/internal/http/handlers"
	httpMW "github.com/brown2020/ikigaifinder/internal/http/middleware"
	"github.com/brown2020/ikigaifinder/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler     *httpH.HealthHandler
	SessionHandler    *httpH.SessionHandler
	IkigaiHandler     *httpH.IkigaiHandler
	GenerationHandler *httpH.GenerationHandler
	ImageHandler      *httpH.ImageHandler
	RealtimeHandler   *httpH.RealtimeHandler

	// TracingEnabled adds the otelgin middleware; spans need the global
	// tracer provider set up first.
	TracingEnabled bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware("ikigaifinder"))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
	}

	v1 := r.Group("/v1")
	{
		if cfg.SessionHandler != nil {
			v1.POST("/session", cfg.SessionHandler.CreateSession)
			v1.DELETE("/session", cfg.SessionHandler.DeleteSession)
		}
		if cfg.IkigaiHandler != nil {
			v1.GET("/questions", cfg.IkigaiHandler.GetQuestions)
			v1.GET("/share/:slug", cfg.IkigaiHandler.GetShared)
		}
	}

	protected := v1.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.IkigaiHandler != nil {
			protected.GET("/ikigai", cfg.IkigaiHandler.GetIkigai)
			protected.POST("/ikigai/steps/:step", cfg.IkigaiHandler.SubmitStep)
			protected.POST("/ikigai/back", cfg.IkigaiHandler.Back)
			protected.POST("/ikigai/jump", cfg.IkigaiHandler.JumpTo)
			protected.POST("/ikigai/select", cfg.IkigaiHandler.Select)
			protected.POST("/ikigai/guidance", cfg.IkigaiHandler.SetGuidance)
			protected.PATCH("/ikigai/share", cfg.IkigaiHandler.Share)
		}
		if cfg.GenerationHandler != nil {
			protected.POST("/ikigai/generate", cfg.GenerationHandler.StartGeneration)
			protected.DELETE("/ikigai/generate", cfg.GenerationHandler.CancelGeneration)
		}
		if cfg.ImageHandler != nil {
			protected.POST("/ikigai/image", cfg.ImageHandler.GenerateImage)
		}
		if cfg.RealtimeHandler != nil {
			protected.GET("/events", cfg.RealtimeHandler.SSEStream)
		}
	}

	return r
}
