package share

import (
	"net/http"

	"inkwell/internal/models"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type shareRequest struct {
	DocumentID  string             `json:"documentId" binding:"required"`
	UserID      string             `json:"userId" binding:"required"`
	AccessLevel models.AccessLevel `json:"accessLevel" binding:"required"`
}

func (h *Handler) Share(ctx *gin.Context) {
	var req shareRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	grant, err := h.service.Share(ctx.Request.Context(), req.DocumentID, req.UserID, req.AccessLevel)
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, grant)
}

func (h *Handler) ListForUser(ctx *gin.Context) {
	grants, err := h.service.ListForUser(ctx.Request.Context(), ctx.Param("userId"))
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, grants)
}

func (h *Handler) Revoke(ctx *gin.Context) {
	err := h.service.Revoke(ctx.Request.Context(), ctx.Param("documentId"), ctx.Param("userId"))
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.Status(http.StatusNoContent)
}
