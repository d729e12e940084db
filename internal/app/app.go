package app

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	redisclient "github.com/studyowl/tutor-backend/internal/clients/redis"
	"github.com/studyowl/tutor-backend/internal/data/db"
	"github.com/studyowl/tutor-backend/internal/data/repos"
	"github.com/studyowl/tutor-backend/internal/http/handlers"
	"github.com/studyowl/tutor-backend/internal/platform/envutil"
	"github.com/studyowl/tutor-backend/internal/platform/logger"
	"github.com/studyowl/tutor-backend/internal/server"
	"github.com/studyowl/tutor-backend/internal/tutor/dispatch"
	"github.com/studyowl/tutor-backend/internal/tutor/models"
	"github.com/studyowl/tutor-backend/internal/tutor/prompt"
	"github.com/studyowl/tutor-backend/internal/tutor/provider"
)

type App struct {
	Log    *logger.Logger
	Router *gin.Engine
	Cfg    Config

	cache redisclient.TemplateCache
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	// The template store and cache are both optional at startup: without them
	// every request still resolves through the built-in prompt tier.
	var templateRepo repos.PromptTemplateRepo
	if store, err := db.New(log); err != nil {
		log.Warn("template store unavailable, using built-in prompts only", "error", err)
	} else {
		if err := store.AutoMigrateAll(); err != nil {
			log.Warn("template store automigrate failed", "error", err)
		}
		templateRepo = repos.NewPromptTemplateRepo(store.DB(), log)
	}

	var cache redisclient.TemplateCache
	if c, err := redisclient.NewTemplateCache(log); err != nil {
		log.Warn("template cache disabled", "error", err)
	} else {
		cache = c
	}

	registry := models.NewRegistry()
	if cfg.ModelsConfigPath != "" {
		registry, err = models.NewRegistryFromFile(cfg.ModelsConfigPath)
		if err != nil {
			log.Sync()
			return nil, fmt.Errorf("load models config: %w", err)
		}
	}

	resolver := prompt.NewResolver(log, templateRepo, cache)
	adapters := wireAdapters(log, cfg.ProviderKeys)
	dispatcher := dispatch.NewDispatcher(log, resolver, registry, adapters, cfg.ProviderKeys)

	log.Info("Wiring handlers...")
	if envutil.Bool("GIN_RELEASE", false) {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.NewRouter(server.RouterConfig{
		Log:           log,
		HealthHandler: handlers.NewHealthHandler(),
		TutorHandler:  handlers.NewTutorHandler(log, dispatcher),
	})

	return &App{
		Log:    log,
		Router: router,
		Cfg:    cfg,
		cache:  cache,
	}, nil
}

func wireAdapters(log *logger.Logger, keys dispatch.ProviderKeys) provider.Registry {
	return provider.Registry{
		provider.OpenAI:    provider.NewOpenAI(log, keys[provider.OpenAI]),
		provider.Anthropic: provider.NewAnthropic(log, keys[provider.Anthropic]),
		provider.Mistral:   provider.NewMistral(log, keys[provider.Mistral]),
		provider.Google:    provider.NewGoogle(log, keys[provider.Google]),
		provider.DeepSeek:  provider.NewDeepSeek(log, keys[provider.DeepSeek]),
		provider.XAI:       provider.NewXAI(log, keys[provider.XAI]),
	}
}

func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(":" + a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
