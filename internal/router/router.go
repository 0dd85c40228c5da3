package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/remindly/bot/api/handler"
)

type Handlers struct {
	Health *apiHandler.HealthHandler
	Todo   *apiHandler.TodoHandler
	Link   *apiHandler.LinkHandler
}

// New wires the read-only admin surface. Everything except the health
// probe sits behind JWT auth.
func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	r.GET("/api/v1/todos", authMiddleware(handlers.Todo.List))
	r.GET("/api/v1/links", authMiddleware(handlers.Link.ListUnread))

	return r
}
