package routes

import (
	"time"

	"room-relay/internal/api/handlers"
	"room-relay/internal/api/middleware"
	"room-relay/internal/config"
	"room-relay/internal/metrics"
	"room-relay/internal/services"
	"room-relay/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Router struct {
	engine          *gin.Engine
	wsHandler       *handlers.WSHandler
	roomHandler     *handlers.RoomHandler
	healthHandler   *handlers.HealthHandler
	rateLimitMW     *middleware.RateLimitMiddleware
	gatherer        prometheus.Gatherer
	createRoomLimit int
}

// NewRouter wires the HTTP surface. redisService may be nil, which disables
// rate limiting on room creation.
func NewRouter(
	cfg *config.Config,
	hub *websocket.Hub,
	roomService *services.RoomService,
	redisService *services.RedisService,
	gatherer prometheus.Gatherer,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	// Add middlewares
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(cfg.WebSocket.AllowedOrigins))
	engine.Use(middleware.LogApi("/healthz", "/metrics"))

	var rateLimitMW *middleware.RateLimitMiddleware
	if redisService != nil {
		rateLimitMW = middleware.NewRateLimitMiddleware(redisService)
	}

	return &Router{
		engine:          engine,
		wsHandler:       handlers.NewWSHandler(hub),
		roomHandler:     handlers.NewRoomHandler(roomService),
		healthHandler:   handlers.NewHealthHandler(hub),
		rateLimitMW:     rateLimitMW,
		gatherer:        gatherer,
		createRoomLimit: cfg.Server.CreateRoomLimit,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", r.healthHandler.Health)
	r.engine.GET("/metrics", gin.WrapH(metrics.Handler(r.gatherer)))
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.engine.GET("/ws", r.wsHandler.HandleWebSocket)

	r.engine.GET("/rooms", r.roomHandler.ListRooms)
	r.engine.GET("/rooms/:id/messages", r.roomHandler.GetRoomMessages)

	createRoom := []gin.HandlerFunc{r.roomHandler.CreateRoom}
	if r.rateLimitMW != nil && r.createRoomLimit > 0 {
		createRoom = append([]gin.HandlerFunc{r.rateLimitMW.RateLimitIP(r.createRoomLimit, time.Minute)}, createRoom...)
	}
	r.engine.POST("/add_room", createRoom...)
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
