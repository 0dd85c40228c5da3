package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/remindly/bot/pkg/httpcontext"
	"github.com/remindly/bot/repository"
)

type LinkHandler struct {
	baseHandler
	links   repository.LinkRepository
	ownerID int64
}

func NewLinkHandler(links repository.LinkRepository, ownerID int64, adapter *httpcontext.Adapter, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{
		baseHandler: newBaseHandler(adapter, logger),
		links:       links,
		ownerID:     ownerID,
	}
}

// ListUnread returns the owner's unread reading list, newest first.
func (h *LinkHandler) ListUnread(ctx *fasthttp.RequestCtx) {
	limit := parseInt(string(ctx.QueryArgs().Peek("limit")), 50)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	links, err := h.links.ListUnread(stdCtx, h.ownerID, limit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, links)
}
