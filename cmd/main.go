package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reelchat-backend/internal/config"
	"reelchat-backend/internal/genres"
	"reelchat-backend/internal/handler"
	"reelchat-backend/internal/recommender"
	"reelchat-backend/internal/service"
	"reelchat-backend/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	backend := recommender.NewClient(cfg.Recommender)

	catalog := genres.NewCatalog()
	refreshGenres(backend, catalog)

	chatService := service.NewChatService(cfg, backend, catalog)
	chatHandler := handler.NewChatHandler(chatService, catalog)

	router := setupRouter(cfg, chatHandler)

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		logger.Infof("Server listening on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server shutting down...")
	if err := server.Close(); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	logger.Info("Server stopped")
}

// refreshGenres overlays the built-in genre table with the backend's
// current one. Best effort: the embedded defaults cover a failed lookup.
func refreshGenres(backend *recommender.Client, catalog *genres.Catalog) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	set, err := backend.Genres(ctx)
	if err != nil {
		logger.Warnf("Genre refresh failed, using built-in table: %v", err)
		return
	}

	catalog.Merge(set.MovieGenres)
	catalog.Merge(set.TVGenres)
}

func setupRouter(cfg *config.Config, chatHandler *handler.ChatHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	api := router.Group("/api")
	{
		chat := api.Group("/chat")
		{
			chat.POST("/stream", chatHandler.StreamChat)
			chat.POST("/mood", chatHandler.StreamMoodChat)
			chat.POST("/session", chatHandler.CreateSession)
			chat.POST("/session/list", chatHandler.GetSessionList)
			chat.GET("/session/del/:session_id", chatHandler.DeleteSession)
			chat.GET("/session/:session_id", chatHandler.GetSession)
			chat.POST("/session/:session_id/clear", chatHandler.ClearSession)
			chat.GET("/turns/:session_id", chatHandler.GetTurns)
		}

		api.GET("/genres", chatHandler.GetGenres)

		recs := api.Group("/recommendations")
		{
			recs.GET("/trending", chatHandler.GetTrending)
			recs.GET("/popular", chatHandler.GetPopular)
		}
	}

	return router
}
