package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"lingvobot/internal/storage"
)

func (b *Bot) showAdminMenuMessage(chatID int64, sess session) {
	b.replyMarkup(chatID, b.tr.Text("admin.admin_management", sess.lang), b.adminMenuKeyboard(sess.lang))
}

func (b *Bot) showAdminMenuEdit(query *tgbotapi.CallbackQuery, sess session) {
	b.answerCallback(query.ID, "", false)
	b.render(query, b.tr.Text("admin.admin_management", sess.lang), b.adminMenuKeyboard(sess.lang))
}

func (b *Bot) backToAdminMenuKeyboard(lang string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.tr.Text("buttons.back", lang), encodeToken(kindAdminMenu)),
		),
	)
}

func (b *Bot) showAdminList(ctx context.Context, query *tgbotapi.CallbackQuery, sess session) {
	admins, err := b.db.ListStudents(ctx, storage.AdminStudents)
	if err != nil {
		b.logger.Error("failed to list admins", zap.Error(err))
		b.answerCallback(query.ID, b.tr.Text("errors.generic", sess.lang), true)
		return
	}
	b.answerCallback(query.ID, "", false)
	lines := []string{b.tr.Text("admin.admin_list", sess.lang), ""}
	for _, a := range admins {
		if a.Username != "" {
			lines = append(lines, fmt.Sprintf("• %s (@%s) — %d", a.FullName(), a.Username, a.UserID))
		} else {
			lines = append(lines, fmt.Sprintf("• %s — %d", a.FullName(), a.UserID))
		}
	}
	b.render(query, strings.Join(lines, "\n"), b.backToAdminMenuKeyboard(sess.lang))
}

// startAdminAdd begins the grant-by-id conversation. Only users who already
// talked to the bot can be promoted; there is no row to flag otherwise.
func (b *Bot) startAdminAdd(query *tgbotapi.CallbackQuery, sess session) {
	b.setState(query.From.ID, flowAdminAdd, stepAdminID)
	b.answerCallback(query.ID, "", false)
	b.replyMarkup(query.Message.Chat.ID, b.tr.Text("admin.enter_admin_id", sess.lang), b.cancelKeyboard(sess.lang))
}

func (b *Bot) adminAddMessage(ctx context.Context, message *tgbotapi.Message, sess session, st *wizardState) {
	chatID := message.Chat.ID
	id, err := strconv.ParseInt(strings.TrimSpace(message.Text), 10, 64)
	if err != nil || id <= 0 {
		b.reply(chatID, b.tr.Text("admin.invalid_admin_id", sess.lang))
		return
	}
	student, err := b.db.GetStudent(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.reply(chatID, b.tr.Text("admin.user_not_found", sess.lang))
			return
		}
		b.clearState(message.From.ID)
		b.logger.Error("failed to load student", zap.Int64("user_id", id), zap.Error(err))
		b.reply(chatID, b.tr.Text("errors.generic", sess.lang))
		return
	}
	b.clearState(message.From.ID)
	if student.IsAdmin {
		b.replyMarkup(chatID, b.tr.Text("admin.already_admin", sess.lang), b.mainMenuKeyboard(sess.lang, true))
		return
	}
	if _, err := b.db.SetAdmin(ctx, id, true); err != nil {
		b.logger.Error("failed to grant admin", zap.Int64("user_id", id), zap.Error(err))
		b.reply(chatID, b.tr.Text("errors.generic", sess.lang))
		return
	}
	b.logger.Info("admin granted", zap.Int64("user_id", id), zap.Int64("granted_by", message.From.ID))
	b.replyMarkup(chatID,
		fmt.Sprintf(b.tr.Text("admin.admin_added", sess.lang), id),
		b.mainMenuKeyboard(sess.lang, true))
}

// showAdminRemoveMenu lists the admins whose rights can be revoked. The
// acting admin is excluded from the list; self-removal is also rejected at
// confirmation in case of a stale button.
func (b *Bot) showAdminRemoveMenu(ctx context.Context, query *tgbotapi.CallbackQuery, sess session) {
	admins, err := b.db.ListStudents(ctx, storage.AdminStudents)
	if err != nil {
		b.logger.Error("failed to list admins", zap.Error(err))
		b.answerCallback(query.ID, b.tr.Text("errors.generic", sess.lang), true)
		return
	}
	removable := admins[:0:0]
	for _, a := range admins {
		if a.UserID != query.From.ID {
			removable = append(removable, a)
		}
	}
	b.answerCallback(query.ID, "", false)
	if len(removable) == 0 {
		b.render(query, b.tr.Text("admin.no_admins", sess.lang), b.backToAdminMenuKeyboard(sess.lang))
		return
	}
	b.render(query, b.tr.Text("admin.select_admin_to_remove", sess.lang),
		b.adminRemoveKeyboard(sess.lang, removable))
}

func (b *Bot) confirmAdminRemove(ctx context.Context, query *tgbotapi.CallbackQuery, sess session, userID int64) {
	if userID == query.From.ID {
		b.answerCallback(query.ID, b.tr.Text("admin.cant_remove_yourself", sess.lang), true)
		return
	}
	target, err := b.db.GetStudent(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.answerCallback(query.ID, b.tr.Text("admin.user_not_found", sess.lang), true)
			return
		}
		b.logger.Error("failed to load student", zap.Int64("user_id", userID), zap.Error(err))
		b.answerCallback(query.ID, b.tr.Text("errors.generic", sess.lang), true)
		return
	}
	b.answerCallback(query.ID, "", false)
	b.render(query,
		fmt.Sprintf(b.tr.Text("admin.confirm_remove_admin", sess.lang), target.FullName()),
		b.confirmKeyboard(sess.lang,
			RemoveAdminToken{UserID: userID, Confirmed: true}.Encode(),
			encodeToken(kindAdminRemove)))
}

func (b *Bot) removeAdmin(ctx context.Context, query *tgbotapi.CallbackQuery, sess session, userID int64) {
	if userID == query.From.ID {
		b.answerCallback(query.ID, b.tr.Text("admin.cant_remove_yourself", sess.lang), true)
		return
	}
	if _, err := b.db.SetAdmin(ctx, userID, false); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.answerCallback(query.ID, b.tr.Text("admin.user_not_found", sess.lang), true)
			return
		}
		b.logger.Error("failed to revoke admin", zap.Int64("user_id", userID), zap.Error(err))
		b.answerCallback(query.ID, b.tr.Text("errors.generic", sess.lang), true)
		return
	}
	b.logger.Info("admin revoked", zap.Int64("user_id", userID), zap.Int64("revoked_by", query.From.ID))
	b.answerCallback(query.ID, "", false)
	b.render(query,
		fmt.Sprintf(b.tr.Text("admin.admin_removed", sess.lang), userID),
		b.backToAdminMenuKeyboard(sess.lang))
}
