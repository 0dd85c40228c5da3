package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/remindly/bot/domain"
	"github.com/remindly/bot/pkg/httpcontext"
	"github.com/remindly/bot/repository"
)

type TodoHandler struct {
	baseHandler
	todos repository.TodoRepository
}

func NewTodoHandler(todos repository.TodoRepository, adapter *httpcontext.Adapter, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		baseHandler: newBaseHandler(adapter, logger),
		todos:       todos,
	}
}

// List returns todos for inspection. Query parameters: status
// (pending|all, default all) and limit.
func (h *TodoHandler) List(ctx *fasthttp.RequestCtx) {
	mode := domain.TodoListAll
	if string(ctx.QueryArgs().Peek("status")) == string(domain.TodoListPending) {
		mode = domain.TodoListPending
	}

	filter := repository.TodoFilter{
		Mode:  mode,
		Order: repository.TodoOrderDeadlineAsc,
		Limit: parseInt(string(ctx.QueryArgs().Peek("limit")), 50),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	todos, err := h.todos.List(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, todos)
}
