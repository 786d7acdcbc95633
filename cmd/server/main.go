package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"nova-ai/internal/adapter"
	"nova-ai/internal/engine"
	"nova-ai/internal/skills"
	"nova-ai/pkg/config"
	apperrors "nova-ai/pkg/errors"
	"nova-ai/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Initialize logger
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting Nova API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Build the skill registry before serving any request
	registry := skills.NewRegistry()
	if err := skills.RegisterAll(registry); err != nil {
		log.Fatal("Failed to register skills", zap.Error(err))
	}

	eng := engine.New(registry)
	adp := newAdapter(cfg)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, eng, adp)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
	log.Info("Server exited")
}

// newAdapter picks the configured LLM adapter implementation
func newAdapter(cfg *config.Config) adapter.Adapter {
	timeout := time.Duration(cfg.AdapterTimeout) * time.Second
	if cfg.Adapter == "openai" {
		return adapter.NewOpenAIAdapter(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.OllamaModel, timeout)
	}
	return adapter.NewOllamaAdapter(cfg.OllamaModel, timeout)
}

// newRouter assembles the gin router with all API routes
func newRouter(cfg *config.Config, eng *engine.Engine, adp adapter.Adapter) *gin.Engine {
	log := logger.Get()

	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware (the Electron UI runs as a separate origin)
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/skills", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"skills": eng.Registry().List()})
		})

		api.POST("/prompt", promptHandler(cfg, eng, adp))
		api.POST("/confirm", confirmHandler(cfg, eng))
		api.POST("/stt", sttHandler(cfg))
	}

	return router
}

// promptHandler runs the prompt through the LLM adapter and dispatches the
// resulting action. When the adapter is unavailable the regex parser takes
// over silently; the request never fails for that reason.
func promptHandler(cfg *config.Config, eng *engine.Engine, adp adapter.Adapter) gin.HandlerFunc {
	log := logger.Get()

	return func(c *gin.Context) {
		var req struct {
			Prompt string `json:"prompt" binding:"required"`
			Model  string `json:"model"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		prompt := strings.TrimSpace(req.Prompt)
		if prompt == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing prompt"})
			return
		}

		action, err := adp.PromptToAction(ctx, prompt, req.Model)
		if err != nil {
			if apperrors.IsAdapterUnavailable(err) {
				log.Debug("Adapter unavailable, using regex parser", zap.Error(err))
				parsed, perr := engine.ParseCommand(prompt)
				if perr != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": "parse_error", "message": perr.Error()})
					return
				}
				fallback := parsed.ToAction()
				action = &fallback
			} else {
				log.Error("Adapter failed", zap.Error(err))
				c.JSON(http.StatusBadGateway, gin.H{"error": "adapter_error", "message": err.Error()})
				return
			}
		}

		result := eng.HandleAction(ctx, *action, cfg.GrantedPermissions)
		c.JSON(http.StatusOK, gin.H{"action": action, "result": result})
	}
}

// confirmHandler replays previously pending actions with confirm forced on
func confirmHandler(cfg *config.Config, eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Actions []engine.Action `json:"actions" binding:"required"`
		}

		if err := c.ShouldBindJSON(&req); err != nil || len(req.Actions) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing actions array"})
			return
		}

		nested := make([]interface{}, 0, len(req.Actions))
		for _, act := range req.Actions {
			if act.Action == "" {
				continue
			}
			args := make(map[string]interface{}, len(act.Args)+1)
			for k, v := range act.Args {
				args[k] = v
			}
			args["confirm"] = true
			nested = append(nested, map[string]interface{}{"action": act.Action, "args": args})
		}

		batch := engine.Action{
			Action: engine.ActionBatch,
			Args:   map[string]interface{}{"actions": nested},
		}

		result := eng.HandleAction(c.Request.Context(), batch, cfg.GrantedPermissions)
		c.JSON(http.StatusOK, result)
	}
}

// sttHandler transcribes an uploaded audio file via the whisper CLI
func sttHandler(cfg *config.Config) gin.HandlerFunc {
	log := logger.Get()

	return func(c *gin.Context) {
		file, err := c.FormFile("audio")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field 'audio'"})
			return
		}

		if _, err := exec.LookPath(cfg.WhisperCLI); err != nil {
			c.JSON(http.StatusNotImplemented, gin.H{
				"error": "missing whisper-cli",
				"hint":  "Set WHISPER_CLI env var or install whisper.cpp CLI",
			})
			return
		}

		tmpPath := filepath.Join(os.TempDir(), fmt.Sprintf("nova-stt-%d.wav", time.Now().UnixNano()))
		if err := c.SaveUploadedFile(file, tmpPath); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "stt_error", "message": err.Error()})
			return
		}
		defer os.Remove(tmpPath)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Minute)
		defer cancel()

		cmd := exec.CommandContext(ctx, cfg.WhisperCLI, tmpPath, "--model", cfg.WhisperModel, "--output", "-")
		out, err := cmd.Output()
		if err != nil {
			stderr := ""
			if exitErr, ok := err.(*exec.ExitError); ok {
				stderr = strings.TrimSpace(string(exitErr.Stderr))
			}
			log.Error("STT failed", zap.String("stderr", stderr), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "stt_failed", "stderr": stderr})
			return
		}

		c.JSON(http.StatusOK, gin.H{"text": strings.TrimSpace(string(out))})
	}
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
