package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docchat-backend/internal/files"
	"docchat-backend/internal/shared/server/middleware"
	"docchat-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches chat routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/files/:fileId/messages", h.message)
}

type messageRequest struct {
	Message string `json:"message"`
}

type messageResponse struct {
	Answer string `json:"answer"`
}

func (h *Handler) message(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	fileID := c.Param("fileId")

	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	ctx := files.WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	answer, err := h.Svc.Answer(ctx, userID, fileID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
		case errors.Is(err, ErrNotReady):
			respond.Error(c, http.StatusConflict, "not_ready", "file is not ready for chat", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to answer message", nil)
		}
		return
	}

	c.Set("fileId", fileID)
	respond.JSON(c, http.StatusOK, messageResponse{Answer: answer})
}
