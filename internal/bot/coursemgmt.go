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

// Wizard data keys of the course edit flow.
const (
	dataCourseID  = "course_id"
	dataEditField = "edit_field"
)

// showManageCourse renders the admin edit card of one course.
func (b *Bot) showManageCourse(ctx context.Context, query *tgbotapi.CallbackQuery, sess session, tok ManageCourseToken) {
	course, err := b.db.GetCourse(ctx, tok.CourseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.answerCallback(query.ID, b.tr.Text("course.not_found", sess.lang), true)
			return
		}
		b.logger.Error("failed to load course", zap.Uint("course_id", tok.CourseID), zap.Error(err))
		b.answerCallback(query.ID, b.tr.Text("errors.generic", sess.lang), true)
		return
	}
	b.answerCallback(query.ID, "", false)
	text := b.tr.Text("admin.edit_course", sess.lang) + "\n\n" + b.courseCardText(sess.lang, *course)
	b.render(query, text, b.manageCourseKeyboard(sess.lang, *course, tok.Difficulty))
}

// editPromptKey maps an editable field to its input prompt.
func editPromptKey(field courseField) string {
	switch field {
	case fieldTitle:
		return "course.add_title"
	case fieldDescription:
		return "course.add_description"
	case fieldBanner:
		return "course.add_banner"
	case fieldVideo:
		return "course.add_video"
	case fieldVoice:
		return "course.add_voice"
	case fieldText:
		return "course.add_text"
	case fieldOrder:
		return "course.enter_order"
	}
	return "errors.wrong_input"
}

// startCourseEdit begins a single-field edit conversation.
func (b *Bot) startCourseEdit(ctx context.Context, query *tgbotapi.CallbackQuery, sess session, tok EditFieldToken) {
	if _, err := b.db.GetCourse(ctx, tok.CourseID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.answerCallback(query.ID, b.tr.Text("course.not_found", sess.lang), true)
			return
		}
		b.logger.Error("failed to load course", zap.Uint("course_id", tok.CourseID), zap.Error(err))
		b.answerCallback(query.ID, b.tr.Text("errors.generic", sess.lang), true)
		return
	}
	st := b.setState(query.From.ID, flowCourseEdit, stepEditAwait)
	st.Data[dataCourseID] = tok.CourseID
	st.Data[dataEditField] = string(tok.Field)
	b.answerCallback(query.ID, "", false)
	b.replyMarkup(query.Message.Chat.ID, b.tr.Text(editPromptKey(tok.Field), sess.lang), b.cancelKeyboard(sess.lang))
}

// courseEditMessage consumes the replacement value. Validation matches the
// creation wizard; a bad value re-prompts without losing the conversation.
func (b *Bot) courseEditMessage(ctx context.Context, message *tgbotapi.Message, sess session, st *wizardState) {
	chatID := message.Chat.ID
	field := courseField(st.str(dataEditField))

	var changes storage.CourseUpdate
	switch field {
	case fieldTitle:
		if trimmedLen(message.Text) < minTitleLen {
			b.reply(chatID, b.tr.Text("course.title_too_short", sess.lang))
			return
		}
		v := strings.TrimSpace(message.Text)
		changes.Title = &v
	case fieldDescription:
		if trimmedLen(message.Text) < minTextLen {
			b.reply(chatID, b.tr.Text("course.description_too_short", sess.lang))
			return
		}
		v := strings.TrimSpace(message.Text)
		changes.Description = &v
	case fieldText:
		if trimmedLen(message.Text) < minTextLen {
			b.reply(chatID, b.tr.Text("course.description_too_short", sess.lang))
			return
		}
		v := strings.TrimSpace(message.Text)
		changes.TextExplanation = &v
	case fieldBanner:
		if len(message.Photo) == 0 {
			b.reply(chatID, b.tr.Text("course.need_photo", sess.lang))
			return
		}
		v := largestPhotoID(message.Photo)
		changes.BannerFileID = &v
	case fieldVideo:
		if message.Video == nil {
			b.reply(chatID, b.tr.Text("course.need_video", sess.lang))
			return
		}
		v := message.Video.FileID
		changes.VideoFileID = &v
	case fieldVoice:
		if message.Voice == nil {
			b.reply(chatID, b.tr.Text("course.need_voice", sess.lang))
			return
		}
		v := message.Voice.FileID
		changes.VoiceFileID = &v
	case fieldOrder:
		order, err := strconv.Atoi(strings.TrimSpace(message.Text))
		if err != nil || order < orderMin || order > orderMax {
			b.reply(chatID, b.tr.Text("course.invalid_order", sess.lang))
			return
		}
		changes.OrderIndex = &order
	default:
		b.clearState(message.From.ID)
		return
	}

	courseID := st.uintVal(dataCourseID)
	course, err := b.db.UpdateCourse(ctx, courseID, changes)
	if err != nil {
		b.clearState(message.From.ID)
		if errors.Is(err, storage.ErrNotFound) {
			b.replyMarkup(chatID, b.tr.Text("course.not_found", sess.lang), b.mainMenuKeyboard(sess.lang, true))
			return
		}
		b.logger.Error("failed to update course", zap.Uint("course_id", courseID), zap.Error(err))
		b.reply(chatID, b.tr.Text("errors.generic", sess.lang))
		return
	}
	b.clearState(message.From.ID)
	b.logger.Info("course updated",
		zap.Uint("course_id", courseID),
		zap.String("field", string(field)),
		zap.Int64("admin_id", message.From.ID))
	b.replyMarkup(chatID, b.tr.Text("course.updated_success", sess.lang), b.mainMenuKeyboard(sess.lang, true))
	text := b.tr.Text("admin.edit_course", sess.lang) + "\n\n" + b.courseCardText(sess.lang, *course)
	b.replyMarkup(chatID, text, b.manageCourseKeyboard(sess.lang, *course, nil))
}

// showEditDifficulty opens the inline level picker for an existing course.
func (b *Bot) showEditDifficulty(query *tgbotapi.CallbackQuery, sess session, courseID uint) {
	b.answerCallback(query.ID, "", false)
	b.render(query, b.tr.Text("course.select_difficulty", sess.lang), b.editDifficultyKeyboard(sess.lang, courseID))
}

// applyCourseDifficulty persists the new level and redraws the edit card.
func (b *Bot) applyCourseDifficulty(ctx context.Context, query *tgbotapi.CallbackQuery, sess session, tok SetDiffToken) {
	level := tok.Level
	course, err := b.db.UpdateCourse(ctx, tok.CourseID, storage.CourseUpdate{Difficulty: &level})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.answerCallback(query.ID, b.tr.Text("course.not_found", sess.lang), true)
			return
		}
		b.logger.Error("failed to update course", zap.Uint("course_id", tok.CourseID), zap.Error(err))
		b.answerCallback(query.ID, b.tr.Text("errors.generic", sess.lang), true)
		return
	}
	b.answerCallback(query.ID, b.tr.Text("course.updated_success", sess.lang), false)
	text := b.tr.Text("admin.edit_course", sess.lang) + "\n\n" + b.courseCardText(sess.lang, *course)
	b.render(query, text, b.manageCourseKeyboard(sess.lang, *course, nil))
}

// confirmCourseDelete shows the destructive confirmation for one course.
func (b *Bot) confirmCourseDelete(ctx context.Context, query *tgbotapi.CallbackQuery, sess session, courseID uint) {
	course, err := b.db.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.answerCallback(query.ID, b.tr.Text("course.not_found", sess.lang), true)
			return
		}
		b.logger.Error("failed to load course", zap.Uint("course_id", courseID), zap.Error(err))
		b.answerCallback(query.ID, b.tr.Text("errors.generic", sess.lang), true)
		return
	}
	b.answerCallback(query.ID, "", false)
	b.render(query,
		fmt.Sprintf(b.tr.Text("course.confirm_delete", sess.lang), course.Title),
		b.confirmKeyboard(sess.lang,
			DeleteCourseToken{CourseID: courseID, Confirmed: true}.Encode(),
			ManageCourseToken{CourseID: courseID}.Encode()))
}

func (b *Bot) deleteCourse(ctx context.Context, query *tgbotapi.CallbackQuery, sess session, courseID uint) {
	course, err := b.db.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.answerCallback(query.ID, b.tr.Text("course.not_found", sess.lang), true)
			return
		}
		b.logger.Error("failed to load course", zap.Uint("course_id", courseID), zap.Error(err))
		b.answerCallback(query.ID, b.tr.Text("errors.generic", sess.lang), true)
		return
	}
	if err := b.db.DeleteCourse(ctx, courseID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.answerCallback(query.ID, b.tr.Text("course.not_found", sess.lang), true)
			return
		}
		b.logger.Error("failed to delete course", zap.Uint("course_id", courseID), zap.Error(err))
		b.answerCallback(query.ID, b.tr.Text("errors.generic", sess.lang), true)
		return
	}
	b.logger.Info("course deleted", zap.Uint("course_id", courseID), zap.Int64("admin_id", query.From.ID))
	b.answerCallback(query.ID, "", false)
	back := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				b.tr.Text("buttons.back", sess.lang),
				ManageListToken{TypeID: course.CourseTypeID}.Encode(),
			),
		),
	)
	b.render(query, b.tr.Text("course.deleted_success", sess.lang), back)
}
