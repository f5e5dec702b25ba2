package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/connection"
	"inkwell/internal/database"
	"inkwell/internal/document"
	"inkwell/internal/folder"
	"inkwell/internal/mail"
	"inkwell/internal/realtime"
	"inkwell/internal/share"
	"inkwell/internal/template"
	"inkwell/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.LogLevel)

	db := database.NewManager()
	if err := db.Connect(cfg.DatabaseURL); err != nil {
		logger.Error(fmt.Sprintf("error connecting to database: %v", err))
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error(fmt.Sprintf("error closing database: %v", err))
		}
	}()

	var docCache document.Cache
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		c, err := cache.New(ctx, cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, document cache disabled", "error", err)
		} else {
			docCache = c
			defer c.Close()
		}
	}

	var mailer mail.Mailer = mail.Disabled{Logger: logger}
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTP(mail.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	}

	jwtKey := []byte(cfg.JWTKey)

	documents := document.NewService(db.DB, docCache, logger)
	folders := folder.NewService(db.DB, logger)
	shares := share.NewService(db.DB, mailer, logger, cfg.AppBaseURL)
	connections := connection.NewService(db.DB, logger)
	templates := template.NewService(db.DB, logger)
	hub := realtime.NewHub(documents, connections, logger)

	authHandler := auth.NewHandler(db.DB, jwtKey, logger, mailer)
	documentHandler := document.NewHandler(documents)
	folderHandler := folder.NewHandler(folders)
	shareHandler := share.NewHandler(shares)
	connectionHandler := connection.NewHandler(connections)
	templateHandler := template.NewHandler(templates)
	userHandler := user.NewHandler(documents, shares)

	r := gin.Default()
	r.Use(auth.CORSMiddleware(cfg.AllowedOrigins, cfg.AllowAllOrigins))

	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	protected := r.Group("/")
	protected.Use(auth.MiddleWare(jwtKey, db.DB))

	protected.POST("/documents", documentHandler.Create)
	protected.GET("/documents", documentHandler.List)
	protected.GET("/documents/trash/all", documentHandler.ListTrashed)
	protected.DELETE("/documents/trash/empty", documentHandler.EmptyTrash)
	protected.GET("/documents/:id", documentHandler.Get)
	protected.PATCH("/documents/:id", documentHandler.Update)
	protected.DELETE("/documents/:id", documentHandler.Remove)
	protected.POST("/documents/:id/trash", documentHandler.MoveToTrash)
	protected.POST("/documents/:id/restore", documentHandler.RestoreFromTrash)
	protected.PATCH("/documents/:id/status", documentHandler.ChangeStatus)

	protected.POST("/folders", folderHandler.Create)
	protected.GET("/folders", folderHandler.List)
	protected.GET("/folders/:id", folderHandler.Get)
	protected.PATCH("/folders/:id", folderHandler.Update)
	protected.DELETE("/folders/:id", folderHandler.Delete)

	protected.POST("/shared-documents", shareHandler.Share)
	protected.GET("/shared-documents/user/:userId", shareHandler.ListForUser)
	protected.DELETE("/shared-documents/:documentId/:userId", shareHandler.Revoke)

	protected.POST("/connections", connectionHandler.Create)
	protected.GET("/connections", connectionHandler.List)
	protected.PATCH("/connections/:id", connectionHandler.UpdateStatus)

	protected.GET("/user/me", userHandler.Me)
	protected.GET("/user/documents/me/:userId", userHandler.MyDocuments)
	protected.GET("/user/shared-documents/me/:userId", userHandler.MySharedDocuments)

	protected.POST("/templates", templateHandler.Create)
	protected.GET("/templates", templateHandler.List)
	protected.GET("/templates/:id", templateHandler.Get)
	protected.DELETE("/templates/:id", templateHandler.Delete)

	protected.GET("/ws", hub.Serve)

	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error(fmt.Sprintf("error starting server: %v", err))
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
