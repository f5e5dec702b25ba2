package user

import (
	"net/http"

	"inkwell/internal/auth"
	"inkwell/internal/document"
	"inkwell/internal/models"
	"inkwell/internal/share"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	documents *document.Service
	shares    *share.Service
}

func NewHandler(documents *document.Service, shares *share.Service) *Handler {
	return &Handler{documents: documents, shares: shares}
}

// Me echoes the authenticated user's token claims.
func (h *Handler) Me(ctx *gin.Context) {
	claims := auth.CallerClaims(ctx)
	if claims == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"id":    claims.ID,
		"name":  claims.Name,
		"email": claims.Email,
	})
}

func (h *Handler) MyDocuments(ctx *gin.Context) {
	docs, err := h.documents.ListByOwner(ctx.Request.Context(), ctx.Param("userId"))
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, docs)
}

func (h *Handler) MySharedDocuments(ctx *gin.Context) {
	grants, err := h.shares.ListForUser(ctx.Request.Context(), ctx.Param("userId"))
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, grants)
}
