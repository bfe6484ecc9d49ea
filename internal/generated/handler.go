package generated

import (
	"errors"
	"io"
	"net/http"
	"time"

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

// RegisterRoutes attaches regeneration routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/files/:fileId/regenerate", h.regenerate)
	rg.GET("/files/:fileId/generated/:generatedId", h.getPair)
	rg.GET("/files/:fileId/generated/:generatedId/content", h.download)
}

type regenerateRequest struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type regenerateResponse struct {
	GeneratedID string `json:"generatedId"`
}

func (h *Handler) regenerate(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		return
	}
	fileID := c.Param("fileId")

	var req regenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	ctx := files.WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	doc, err := h.Svc.Create(ctx, userID, fileID, req.Text, req.URL)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to regenerate document", nil)
		}
		return
	}

	c.Set("fileId", fileID)
	c.Set("generatedId", doc.ID)
	respond.JSON(c, http.StatusOK, regenerateResponse{GeneratedID: doc.ID})
}

type pairResponse struct {
	File      fileView      `json:"file"`
	Generated generatedView `json:"generated"`
}

type fileView struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	URL          string    `json:"url"`
	UploadStatus string    `json:"uploadStatus"`
	CreatedAt    time.Time `json:"createdAt"`
}

type generatedView struct {
	ID        string    `json:"id"`
	Strategy  string    `json:"strategy"`
	MimeType  string    `json:"mimeType"`
	SizeBytes int64     `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Handler) getPair(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	fileID := c.Param("fileId")
	generatedID := c.Param("generatedId")

	source, doc, err := h.Svc.GetPair(c.Request.Context(), userID, fileID, generatedID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "generated document not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch generated document", nil)
		}
		return
	}

	c.Set("fileId", source.ID)
	c.Set("generatedId", doc.ID)
	respond.JSON(c, http.StatusOK, pairResponse{
		File: fileView{
			ID:           source.ID,
			Name:         source.Name,
			URL:          source.URL,
			UploadStatus: string(source.UploadStatus),
			CreatedAt:    source.CreatedAt,
		},
		Generated: generatedView{
			ID:        doc.ID,
			Strategy:  doc.Strategy,
			MimeType:  doc.MimeType,
			SizeBytes: doc.SizeBytes,
			CreatedAt: doc.CreatedAt,
		},
	})
}

func (h *Handler) download(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	fileID := c.Param("fileId")
	generatedID := c.Param("generatedId")

	reader, doc, err := h.Svc.OpenContent(c.Request.Context(), userID, fileID, generatedID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "generated document not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch generated document", nil)
		}
		return
	}
	defer reader.Close()

	c.Set("generatedId", doc.ID)
	c.Header("Content-Type", doc.MimeType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}
