package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"lingvobot/internal/i18n"
)

// handleStart registers the student on first contact and shows the main
// menu. Returning students get a shorter greeting.
func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	student, created, err := b.registerStudent(ctx, message.From)
	if err != nil {
		b.logger.Error("failed to register student", zap.Int64("user_id", message.From.ID), zap.Error(err))
		b.reply(chatID, b.tr.Text("errors.generic", b.tr.Fallback()))
		return
	}

	lang := student.Language
	if !i18n.Supported(lang) {
		lang = b.tr.Fallback()
	}

	if created {
		b.reply(chatID, b.tr.Text("registration_success", lang))
	}
	key := "welcome"
	if !created {
		key = "welcome_back"
	}
	b.replyMarkup(chatID, b.tr.Text(key, lang), b.mainMenuKeyboard(lang, student.IsAdmin))
}

// handleAdminCommand shows the admin main menu.
func (b *Bot) handleAdminCommand(ctx context.Context, message *tgbotapi.Message, sess session) {
	chatID := message.Chat.ID
	if !b.requireAdmin(sess, chatID) {
		return
	}
	b.replyMarkup(chatID, b.tr.Text("admin.welcome", sess.lang), b.mainMenuKeyboard(sess.lang, true))
}
