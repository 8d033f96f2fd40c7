package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// send delivers any chattable and logs delivery failures. The nil api guard
// lets handler tests run without a live Telegram connection; such tests read
// the outbox to inspect what would have been sent.
func (b *Bot) send(c tgbotapi.Chattable) {
	if b.api == nil {
		b.outbox = append(b.outbox, c)
		return
	}
	if _, err := b.api.Send(c); err != nil {
		b.logger.Warn("failed to send message", zap.Error(err))
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) replyMarkup(chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	b.send(msg)
}

func (b *Bot) editText(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) {
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup))
}

// answerCallback acknowledges a callback query so the client stops showing
// the loading spinner. With alert=true the text pops up as a modal.
func (b *Bot) answerCallback(queryID, text string, alert bool) {
	if b.api == nil {
		return
	}
	var cb tgbotapi.CallbackConfig
	if alert {
		cb = tgbotapi.NewCallbackWithAlert(queryID, text)
	} else {
		cb = tgbotapi.NewCallback(queryID, text)
	}
	if _, err := b.api.Request(cb); err != nil {
		b.logger.Warn("failed to answer callback query", zap.Error(err))
	}
}
