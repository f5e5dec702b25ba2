package folder

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

type createRequest struct {
	Name        string   `json:"name" binding:"required"`
	DocumentIDs []string `json:"documentIds"`
}

type updateRequest struct {
	Name *string `json:"name"`
}

func (h *Handler) Create(ctx *gin.Context) {
	var req createRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	folder, err := h.service.Create(ctx.Request.Context(), CreateInput{
		Name:        req.Name,
		OwnerID:     auth.CallerID(ctx),
		DocumentIDs: req.DocumentIDs,
	})
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, folder)
}

func (h *Handler) Get(ctx *gin.Context) {
	folder, err := h.service.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, folder)
}

func (h *Handler) Update(ctx *gin.Context) {
	var req updateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	folder, err := h.service.Update(ctx.Request.Context(), ctx.Param("id"), UpdateInput{Name: req.Name})
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, folder)
}

func (h *Handler) Delete(ctx *gin.Context) {
	folder, err := h.service.Delete(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, folder)
}

func (h *Handler) List(ctx *gin.Context) {
	q := ListQuery{
		OwnerID: auth.CallerID(ctx),
		Search:  ctx.Query("search"),
	}
	if page, err := strconv.Atoi(ctx.Query("page")); err == nil {
		q.Page = page
	}
	if limit, err := strconv.Atoi(ctx.Query("limit")); err == nil {
		q.Limit = limit
	}

	page, err := h.service.List(ctx.Request.Context(), q)
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, page)
}
