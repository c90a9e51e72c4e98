package app

import (
	"github.com/gin-gonic/gin"

	ikihttp "github.com/brown2020/ikigaifinder/internal/http"
	httpH "github.com/brown2020/ikigaifinder/internal/http/handlers"
	httpMW "github.com/brown2020/ikigaifinder/internal/http/middleware"
	"github.com/brown2020/ikigaifinder/internal/observability"
	"github.com/brown2020/ikigaifinder/internal/platform/logger"
	"github.com/brown2020/ikigaifinder/internal/sse"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Session    *httpH.SessionHandler
	Ikigai     *httpH.IkigaiHandler
	Generation *httpH.GenerationHandler
	Image      *httpH.ImageHandler
	Realtime   *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, serviceset Services, sseHub *sse.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(),
		Session:    httpH.NewSessionHandler(log, serviceset.Auth),
		Ikigai:     httpH.NewIkigaiHandler(log, serviceset.Record),
		Generation: httpH.NewGenerationHandler(log, serviceset.Generation),
		Image:      httpH.NewImageHandler(log, serviceset.Image),
		Realtime:   httpH.NewRealtimeHandler(log, sseHub),
	}
}

func wireMiddleware(log *logger.Logger, serviceset Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, serviceset.Auth),
	}
}

func wireRouter(log *logger.Logger, handlerset Handlers, middlewareset Middleware) *gin.Engine {
	return ikihttp.NewRouter(ikihttp.RouterConfig{
		Log:               log,
		AuthMiddleware:    middlewareset.Auth,
		HealthHandler:     handlerset.Health,
		SessionHandler:    handlerset.Session,
		IkigaiHandler:     handlerset.Ikigai,
		GenerationHandler: handlerset.Generation,
		ImageHandler:      handlerset.Image,
		RealtimeHandler:   handlerset.Realtime,
		TracingEnabled:    observability.Enabled(),
	})
}
