package document

import (
	"net/http"
	"strconv"

	"inkwell/internal/auth"
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
	Title    string         `json:"title" binding:"required"`
	Content  datatypes.JSON `json:"content"`
	FolderID *string        `json:"folderId"`
}

type updateRequest struct {
	Title    *string        `json:"title"`
	Content  datatypes.JSON `json:"content"`
	FolderID *string        `json:"folderId"`
}

type statusRequest struct {
	Status models.DocumentStatus `json:"status" binding:"required"`
}

func (h *Handler) Create(ctx *gin.Context) {
	var req createRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	doc, err := h.service.Create(ctx.Request.Context(), auth.CallerID(ctx), CreateInput{
		Title:    req.Title,
		Content:  req.Content,
		FolderID: req.FolderID,
	})
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, doc)
}

func (h *Handler) List(ctx *gin.Context) {
	q := ListQuery{
		Search: ctx.Query("search"),
		Status: models.DocumentStatus(ctx.Query("status")),
		Page:   queryInt(ctx, "page", 1),
		Limit:  queryInt(ctx, "limit", 10),
	}

	page, err := h.service.List(ctx.Request.Context(), auth.CallerID(ctx), q)
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, page)
}

func (h *Handler) Get(ctx *gin.Context) {
	doc, err := h.service.Get(ctx.Request.Context(), ctx.Param("id"), auth.CallerID(ctx))
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, doc)
}

func (h *Handler) Update(ctx *gin.Context) {
	var req updateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	doc, err := h.service.Update(ctx.Request.Context(), ctx.Param("id"), auth.CallerID(ctx), UpdateInput{
		Title:    req.Title,
		Content:  req.Content,
		FolderID: req.FolderID,
	})
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, doc)
}

func (h *Handler) Remove(ctx *gin.Context) {
	doc, err := h.service.Remove(ctx.Request.Context(), ctx.Param("id"), auth.CallerID(ctx))
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, doc)
}

func (h *Handler) MoveToTrash(ctx *gin.Context) {
	doc, err := h.service.MoveToTrash(ctx.Request.Context(), ctx.Param("id"), auth.CallerID(ctx))
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, doc)
}

func (h *Handler) RestoreFromTrash(ctx *gin.Context) {
	doc, err := h.service.RestoreFromTrash(ctx.Request.Context(), ctx.Param("id"), auth.CallerID(ctx))
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, doc)
}

func (h *Handler) ListTrashed(ctx *gin.Context) {
	docs, err := h.service.ListTrashed(ctx.Request.Context(), auth.CallerID(ctx))
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, docs)
}

func (h *Handler) EmptyTrash(ctx *gin.Context) {
	deleted, err := h.service.EmptyTrash(ctx.Request.Context(), auth.CallerID(ctx))
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *Handler) ChangeStatus(ctx *gin.Context) {
	var req statusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	doc, err := h.service.ChangeStatus(ctx.Request.Context(), ctx.Param("id"), auth.CallerID(ctx), req.Status)
	if err != nil {
		ctx.JSON(models.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, doc)
}

func queryInt(ctx *gin.Context, key string, defaultValue int) int {
	raw := ctx.Query(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}
