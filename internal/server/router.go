package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/compass-mentor/server/internal/mentor/model"
	"github.com/compass-mentor/server/internal/mentor/orchestrator"
)

// Server wires the counseling orchestrator to HTTP. The session
// repository is optional; without it the legacy single-message mode is
// stateless.
type Server struct {
	orch      *orchestrator.Orchestrator
	sessions  model.SessionRepository
	preferred string
}

func New(orch *orchestrator.Orchestrator, sessions model.SessionRepository, preferredModel string) *Server {
	return &Server{orch: orch, sessions: sessions, preferred: preferredModel}
}

// Router builds the gin engine with CORS and all chat routes.
func (s *Server) Router(allowOrigins string) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitOrigins(allowOrigins),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", s.healthcheck)

	api := router.Group("/api")
	{
		api.POST("/chat", s.chat)
		api.POST("/chat/simple", s.simpleChat)
		api.POST("/chat/stream", s.chatStream)
	}

	return router
}

func splitOrigins(allowOrigins string) []string {
	var out []string
	for _, o := range strings.Split(allowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		out = []string{"http://localhost:5173"}
	}
	return out
}

func (s *Server) healthcheck(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
