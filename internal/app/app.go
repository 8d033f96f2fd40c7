package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"lingvobot/internal/bot"
	"lingvobot/internal/config"
	"lingvobot/internal/i18n"
	"lingvobot/internal/storage"
	"lingvobot/internal/storage/pg"
	"lingvobot/internal/storage/stubs"
)

// App wires configuration, storage, translations, the bot and the HTTP
// server together.
type App struct {
	config *config.Config
	logger *zap.Logger
	db     storage.Storage
	bot    *bot.Bot
	server *http.Server

	cancel context.CancelFunc
}

// New creates and initializes a new application instance.
func New() (*App, error) {
	// A missing .env file is fine; the process environment still applies.
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app := &App{config: cfg, logger: logger}
	logger.Info("starting lingvobot")

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initBot(); err != nil {
		return nil, err
	}
	app.initHTTPServer()

	return app, nil
}

func (a *App) initDatabase() error {
	if a.config.UseMockDB {
		a.logger.Info("using in-memory mock database")
		a.db = stubs.NewMockDB()
		return nil
	}

	db, err := pg.New(a.config.DatabaseURL, a.logger)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := db.AutoMigrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	a.logger.Info("database initialized")
	a.db = db
	return nil
}

func (a *App) initBot() error {
	tr, err := i18n.Load(a.config.LocalesDir, a.config.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("failed to load translations: %w", err)
	}

	telegramBot, err := bot.NewBot(a.config.TelegramToken, a.db, tr, a.config.SeedAdminIDs, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}
	a.logger.Info("bot created", zap.Int64s("seed_admin_ids", a.config.SeedAdminIDs))
	a.bot = telegramBot
	return nil
}

// initHTTPServer serves the health check and, in webhook mode, the update
// endpoint.
func (a *App) initHTTPServer() {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mux.HandleFunc("/telegram-webhook", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			a.logger.Warn("failed to decode webhook update", zap.Error(err))
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		// Handle in background so Telegram gets its 200 right away.
		go a.bot.HandleUpdate(context.Background(), update)
		w.WriteHeader(http.StatusOK)
	})

	a.server = &http.Server{
		Addr:         ":" + a.config.HTTPPort,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		a.logger.Info("http server listening", zap.String("port", a.config.HTTPPort))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("http server error", zap.Error(err))
		}
	}()
}

// Run starts the bot and blocks until an interrupt signal arrives.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if a.config.WebhookMode {
		if err := a.bot.SetWebhook(a.config.WebhookURL); err != nil {
			return fmt.Errorf("failed to set webhook: %w", err)
		}
	} else {
		go func() {
			if err := a.bot.Start(ctx); err != nil && err != context.Canceled {
				a.logger.Error("bot stopped", zap.Error(err))
			}
		}()
	}

	<-sigChan
	a.logger.Info("shutting down")
	return a.Shutdown()
}

// Shutdown stops the bot, the HTTP server and the database connection.
func (a *App) Shutdown() error {
	if a.cancel != nil {
		a.cancel()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http server shutdown error", zap.Error(err))
	}

	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", zap.Error(err))
		return err
	}

	a.logger.Info("shutdown complete")
	_ = a.logger.Sync()
	return nil
}
