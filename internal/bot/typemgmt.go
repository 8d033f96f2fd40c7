package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"lingvobot/internal/storage"
)

// startTypeCreation opens the two-step course type wizard.
func (b *Bot) startTypeCreation(chatID, userID int64, sess session) {
	b.setState(userID, flowTypeCreate, stepTypeName)
	b.replyMarkup(chatID, b.tr.Text("course_type.name", sess.lang), b.cancelKeyboard(sess.lang))
}

func (b *Bot) typeCreateMessage(ctx context.Context, message *tgbotapi.Message, sess session, st *wizardState) {
	chatID := message.Chat.ID
	if trimmedLen(message.Text) < minTitleLen {
		b.reply(chatID, b.tr.Text("course_type.name_too_short", sess.lang))
		return
	}
	name := strings.TrimSpace(message.Text)
	ct, err := b.db.CreateCourseType(ctx, name, "")
	if err != nil {
		b.logger.Error("failed to create course type", zap.Error(err))
		b.reply(chatID, b.tr.Text("errors.generic", sess.lang))
		return
	}
	b.clearState(message.From.ID)
	b.logger.Info("course type created", zap.Uint("type_id", ct.ID), zap.Int64("admin_id", message.From.ID))
	b.replyMarkup(chatID,
		fmt.Sprintf(b.tr.Text("course_type.created_success", sess.lang), ct.Name),
		b.mainMenuKeyboard(sess.lang, true))
}

func (b *Bot) showManageTypesMessage(ctx context.Context, chatID int64, sess session) {
	types, err := b.db.ListActiveCourseTypes(ctx)
	if err != nil {
		b.logger.Error("failed to list course types", zap.Error(err))
		b.reply(chatID, b.tr.Text("errors.generic", sess.lang))
		return
	}
	if len(types) == 0 {
		b.reply(chatID, b.tr.Text("course_type.no_types", sess.lang))
		return
	}
	b.replyMarkup(chatID, b.tr.Text("course_type.select", sess.lang), courseTypesKeyboard(types, true))
}

func (b *Bot) showManageTypesEdit(ctx context.Context, query *tgbotapi.CallbackQuery, sess session) {
	types, err := b.db.ListActiveCourseTypes(ctx)
	if err != nil {
		b.logger.Error("failed to list course types", zap.Error(err))
		b.answerCallback(query.ID, b.tr.Text("errors.generic", sess.lang), true)
		return
	}
	b.answerCallback(query.ID, "", false)
	if len(types) == 0 {
		b.render(query, b.tr.Text("course_type.no_types", sess.lang), tgbotapi.NewInlineKeyboardMarkup())
		return
	}
	b.render(query, b.tr.Text("course_type.select", sess.lang), courseTypesKeyboard(types, true))
}

// showManageType opens the admin menu of one course type.
func (b *Bot) showManageType(ctx context.Context, query *tgbotapi.CallbackQuery, sess session, typeID uint) {
	ct, err := b.db.GetCourseType(ctx, typeID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.answerCallback(query.ID, b.tr.Text("course_type.not_found", sess.lang), true)
			return
		}
		b.logger.Error("failed to load course type", zap.Uint("type_id", typeID), zap.Error(err))
		b.answerCallback(query.ID, b.tr.Text("errors.generic", sess.lang), true)
		return
	}
	b.answerCallback(query.ID, "", false)
	b.render(query, fmt.Sprintf("📂 %s", ct.Name), b.manageTypeKeyboard(sess.lang, ct.ID))
}

// startTypeRename begins the rename conversation for an existing type.
func (b *Bot) startTypeRename(query *tgbotapi.CallbackQuery, sess session, typeID uint) {
	st := b.setState(query.From.ID, flowTypeRename, stepTypeNewName)
	st.Data[dataTypeID] = typeID
	b.answerCallback(query.ID, "", false)
	b.replyMarkup(query.Message.Chat.ID, b.tr.Text("course_type.rename_prompt", sess.lang), b.cancelKeyboard(sess.lang))
}

func (b *Bot) typeRenameMessage(ctx context.Context, message *tgbotapi.Message, sess session, st *wizardState) {
	chatID := message.Chat.ID
	if trimmedLen(message.Text) < minTitleLen {
		b.reply(chatID, b.tr.Text("course_type.name_too_short", sess.lang))
		return
	}
	name := strings.TrimSpace(message.Text)
	ct, err := b.db.RenameCourseType(ctx, st.uintVal(dataTypeID), name)
	if err != nil {
		b.clearState(message.From.ID)
		if errors.Is(err, storage.ErrNotFound) {
			b.replyMarkup(chatID, b.tr.Text("course_type.not_found", sess.lang), b.mainMenuKeyboard(sess.lang, true))
			return
		}
		b.logger.Error("failed to rename course type", zap.Uint("type_id", st.uintVal(dataTypeID)), zap.Error(err))
		b.reply(chatID, b.tr.Text("errors.generic", sess.lang))
		return
	}
	b.clearState(message.From.ID)
	b.replyMarkup(chatID,
		fmt.Sprintf(b.tr.Text("course_type.renamed_success", sess.lang), ct.Name),
		b.mainMenuKeyboard(sess.lang, true))
}

// confirmTypeDelete shows the destructive confirmation screen. The prompt
// names the type so a misclick is visible before it does damage.
func (b *Bot) confirmTypeDelete(ctx context.Context, query *tgbotapi.CallbackQuery, sess session, typeID uint) {
	ct, err := b.db.GetCourseType(ctx, typeID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.answerCallback(query.ID, b.tr.Text("course_type.not_found", sess.lang), true)
			return
		}
		b.logger.Error("failed to load course type", zap.Uint("type_id", typeID), zap.Error(err))
		b.answerCallback(query.ID, b.tr.Text("errors.generic", sess.lang), true)
		return
	}
	b.answerCallback(query.ID, "", false)
	b.render(query,
		fmt.Sprintf(b.tr.Text("course_type.confirm_delete", sess.lang), ct.Name),
		b.confirmKeyboard(sess.lang,
			DeleteTypeToken{TypeID: typeID, Confirmed: true}.Encode(),
			ManageTypeToken{TypeID: typeID}.Encode()))
}

// deleteType removes the type and, by cascade, every course under it.
func (b *Bot) deleteType(ctx context.Context, query *tgbotapi.CallbackQuery, sess session, typeID uint) {
	if err := b.db.DeleteCourseType(ctx, typeID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.answerCallback(query.ID, b.tr.Text("course_type.not_found", sess.lang), true)
			return
		}
		b.logger.Error("failed to delete course type", zap.Uint("type_id", typeID), zap.Error(err))
		b.answerCallback(query.ID, b.tr.Text("errors.generic", sess.lang), true)
		return
	}
	b.logger.Info("course type deleted", zap.Uint("type_id", typeID), zap.Int64("admin_id", query.From.ID))
	b.answerCallback(query.ID, "", false)
	back := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.tr.Text("buttons.back", sess.lang), encodeToken(kindManageTypes)),
		),
	)
	b.render(query, b.tr.Text("course_type.deleted_success", sess.lang), back)
}
