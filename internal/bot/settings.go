package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"lingvobot/internal/i18n"
)

func (b *Bot) sendAbout(chatID int64, sess session) {
	text := b.tr.Text("about.title", sess.lang) + "\n\n" + b.tr.Text("about.description", sess.lang)
	b.reply(chatID, text)
}

func (b *Bot) sendContact(chatID int64, sess session) {
	text := b.tr.Text("contact.teacher_info", sess.lang) + "\n\n" + b.tr.Text("contact.contact_message", sess.lang)
	b.reply(chatID, text)
}

func (b *Bot) sendSettings(chatID int64, sess session) {
	text := b.tr.Text("user.settings", sess.lang) + "\n\n" + b.tr.Text("user.language", sess.lang)
	b.replyMarkup(chatID, text, languageKeyboard())
}

// applyLanguage persists the chosen language and redraws the main menu so
// the reply keyboard switches immediately.
func (b *Bot) applyLanguage(ctx context.Context, query *tgbotapi.CallbackQuery, sess session, code string) {
	if !i18n.Supported(code) {
		b.answerCallback(query.ID, "", false)
		return
	}
	if sess.student == nil {
		b.answerCallback(query.ID, b.tr.Text("errors.generic", sess.lang), true)
		return
	}
	if err := b.db.UpdateStudentLanguage(ctx, sess.student.UserID, code); err != nil {
		b.logger.Error("failed to update language",
			zap.Int64("user_id", sess.student.UserID), zap.Error(err))
		b.answerCallback(query.ID, b.tr.Text("errors.generic", sess.lang), true)
		return
	}
	b.answerCallback(query.ID, "", false)
	b.replyMarkup(query.Message.Chat.ID,
		b.tr.Text("settings.language_changed", code),
		b.mainMenuKeyboard(code, sess.isAdmin()))
}
