package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"memochat/internal/api"
	"memochat/internal/config"
	"memochat/internal/database"
	"memochat/internal/llm"
	"memochat/internal/navigation"
	"memochat/internal/repository"
	"memochat/internal/service"
)

const (
	databaseStartupTimeout = 60 * time.Second
	shutdownTimeout        = 15 * time.Second
)

// App holds the wired application.
type App struct {
	DB     *sql.DB
	Server *http.Server
}

// NewApp connects to the database, applies migrations and wires every layer.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := waitForDatabase(ctx, database.Options{
		Driver:          cfg.DatabaseDriver,
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}

	fail := func(err error) (*App, error) {
		if cErr := db.Close(); cErr != nil {
			slog.Error("Failed to close database connection", "error", cErr)
		}
		return nil, err
	}

	if err := database.Migrate(cfg.DatabaseDriver, cfg.DatabaseURL); err != nil {
		return fail(fmt.Errorf("failed to migrate database: %w", err))
	}

	hasher, err := service.NewPasswordHasher(cfg.PasswordHasher)
	if err != nil {
		return fail(err)
	}
	provider, err := llm.NewProvider(ctx, llm.Config{
		Provider:   cfg.CompletionProvider,
		APIKey:     cfg.OpenAIAPIKey,
		BaseURL:    cfg.OpenAIBaseURL,
		Model:      cfg.CompletionModel,
		ArkBaseURL: cfg.ArkBaseURL,
		ArkRegion:  cfg.ArkRegion,
	})
	if err != nil {
		return fail(err)
	}

	repo := repository.NewSQLRepository(db)
	authService := service.NewAuthService(repo, hasher)
	historyService := service.NewHistoryService(repo)
	personaService := service.NewPersonaService(repo, cfg.PersonaSampleSize)
	chatService := service.NewChatService(repo, personaService, provider, cfg.CompletionModel, cfg.HistoryWindow)

	renderer, err := api.NewRenderer()
	if err != nil {
		return fail(err)
	}

	store := navigation.NewStore(cfg.SessionIdleTimeout)
	cookie := api.CookieConfig{
		Name:   cfg.SessionCookieName,
		Secure: cfg.CookieSecure,
		MaxAge: cfg.SessionIdleTimeout,
	}
	router := api.NewRouter(store, cookie, api.Handlers{
		Auth:     api.NewAuthHandler(authService, store, renderer),
		Sessions: api.NewSessionHandler(historyService, renderer),
		Chat:     api.NewChatHandler(chatService, cfg.MaxUploadBytes),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for streaming endpoints
		IdleTimeout:       120 * time.Second,
	}

	return &App{DB: db, Server: server}, nil
}

func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger for this critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)
	logConfigSource()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		return 1
	}
	defer func() {
		if err := app.DB.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", cfg.AppPort, "provider", cfg.CompletionProvider, "model", cfg.CompletionModel)
		serverErr <- app.Server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
		return 1
	}
	slog.Info("Server stopped")
	return 0
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

// waitForDatabase retries until the database accepts connections, which covers
// a database container that starts alongside the server.
func waitForDatabase(ctx context.Context, opts database.Options) (*sql.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, databaseStartupTimeout)
	defer cancel()

	slog.Info("Waiting for database to be ready...", "driver", opts.Driver)
	for {
		db, err := database.Open(ctx, opts)
		if err == nil {
			slog.Info("Successfully connected to database.", "driver", opts.Driver)
			return db, nil
		}
		if opts.Driver != database.DriverPostgres {
			return nil, err
		}

		slog.Debug("Database not ready yet, retrying in 3 seconds...", "error", err)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("database did not become ready: %w", err)
		case <-time.After(3 * time.Second):
		}
	}
}
