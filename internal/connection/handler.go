package connection

import (
	"net/http"
	"strconv"

	"inkwell/internal/auth"
	"inkwell/internal/models"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type requestBody struct {
	ReceiverID string `json:"receiverId" binding:"required"`
}

type statusBody struct {
	Status models.ConnectionStatus `json:"status" binding:"required"`
}

func (h *Handler) Create(ctx *gin.Context) {
	var req requestBody
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	conn, err := h.service.Request(ctx.Request.Context(), auth.CallerID(ctx), req.ReceiverID)
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, conn)
}

func (h *Handler) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	status := models.ConnectionStatus(ctx.Query("status"))

	result, err := h.service.List(ctx.Request.Context(), auth.CallerID(ctx), status, page, limit)
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func (h *Handler) UpdateStatus(ctx *gin.Context) {
	var req statusBody
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	conn, err := h.service.UpdateStatus(ctx.Request.Context(), ctx.Param("id"), req.Status)
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, conn)
}
