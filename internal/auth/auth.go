package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"inkwell/internal/mail"
	"inkwell/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Handler struct {
	db     *gorm.DB
	jwtKey []byte
	logger *slog.Logger
	mailer mail.Mailer
}

type Claims struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func NewHandler(db *gorm.DB, jwtKey []byte, logger *slog.Logger, mailer mail.Mailer) *Handler {
	return &Handler{
		db:     db,
		jwtKey: jwtKey,
		logger: logger,
		mailer: mailer,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	var existing models.User
	err := h.db.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"message": "User already exists"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		h.logger.Error("failed to check existing user", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	user := models.User{
		ID:       uuid.NewString(),
		Email:    req.Email,
		Password: string(hashedPassword),
		Name:     req.Name,
	}
	if err := h.db.Create(&user).Error; err != nil {
		h.logger.Error("failed to save user", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	if err := h.mailer.SendWelcome(user.Email, user.Name); err != nil {
		h.logger.Warn("failed to send welcome email", "email", user.Email, "error", err)
	}

	token, err := CreateToken(&user, h.jwtKey)
	if err != nil {
		h.logger.Error("failed to create token", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"token": token})
}

func (h *Handler) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	var user models.User
	err := h.db.Where("email = ?", req.Email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		h.logger.Error("failed to look up user", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	token, err := CreateToken(&user, h.jwtKey)
	if err != nil {
		h.logger.Error("failed to create token", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"token": token})
}

func CreateToken(user *models.User, secretKey []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 24 * 7)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	return token.SignedString(secretKey)
}

// ParseToken validates a bearer token, with or without the "Bearer " prefix.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, models.ErrUnauthorized
	}
	return claims, nil
}
