package template

import (
	"net/http"

	"inkwell/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Content     datatypes.JSON `json:"content"`
}

func (h *Handler) Create(ctx *gin.Context) {
	var req createRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	tpl, err := h.service.Create(ctx.Request.Context(), CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Content:     req.Content,
	})
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, tpl)
}

func (h *Handler) List(ctx *gin.Context) {
	templates, err := h.service.List(ctx.Request.Context())
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, templates)
}

func (h *Handler) Get(ctx *gin.Context) {
	tpl, err := h.service.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, tpl)
}

func (h *Handler) Delete(ctx *gin.Context) {
	if err := h.service.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.Status(http.StatusNoContent)
}
