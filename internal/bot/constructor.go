package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"lingvobot/internal/i18n"
	"lingvobot/internal/storage"
)

// NewBot creates a new bot instance. seedAdminIDs mark users who become
// admins the first time they contact the bot; after that the database row
// is the only source of truth.
func NewBot(token string, db storage.Storage, tr *i18n.Provider, seedAdminIDs []int64, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}

	seed := make(map[int64]bool, len(seedAdminIDs))
	for _, id := range seedAdminIDs {
		seed[id] = true
	}

	logger.Info("authorized on account", zap.String("username", api.Self.UserName))

	return &Bot{
		api:        api,
		db:         db,
		tr:         tr,
		seedAdmins: seed,
		states:     make(map[int64]*wizardState),
		logger:     logger,
	}, nil
}

// GetAPI returns the underlying telegram api client.
func (b *Bot) GetAPI() *tgbotapi.BotAPI {
	return b.api
}
