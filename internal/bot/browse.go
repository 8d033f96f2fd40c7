package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"lingvobot/internal/models"
	"lingvobot/internal/storage"
)

// render replaces the screen the pressed button lives on. Media messages
// have no text to edit, so those get a fresh message instead.
func (b *Bot) render(query *tgbotapi.CallbackQuery, text string, kb tgbotapi.InlineKeyboardMarkup) {
	if query.Message.Text != "" {
		b.editText(query.Message.Chat.ID, query.Message.MessageID, text, kb)
		return
	}
	b.replyMarkup(query.Message.Chat.ID, text, kb)
}

func (b *Bot) showCourseTypesMessage(ctx context.Context, chatID int64, sess session) {
	types, err := b.db.ListActiveCourseTypes(ctx)
	if err != nil {
		b.logger.Error("failed to list course types", zap.Error(err))
		b.reply(chatID, b.tr.Text("errors.generic", sess.lang))
		return
	}
	if len(types) == 0 {
		b.reply(chatID, b.tr.Text("courses.no_courses", sess.lang))
		return
	}
	b.replyMarkup(chatID, b.tr.Text("course_type.select", sess.lang), courseTypesKeyboard(types, false))
}

func (b *Bot) showCourseTypesEdit(ctx context.Context, query *tgbotapi.CallbackQuery, sess session) {
	types, err := b.db.ListActiveCourseTypes(ctx)
	if err != nil {
		b.logger.Error("failed to list course types", zap.Error(err))
		b.answerCallback(query.ID, b.tr.Text("errors.generic", sess.lang), true)
		return
	}
	b.answerCallback(query.ID, "", false)
	if len(types) == 0 {
		b.render(query, b.tr.Text("courses.no_courses", sess.lang), tgbotapi.NewInlineKeyboardMarkup())
		return
	}
	b.render(query, b.tr.Text("course_type.select", sess.lang), courseTypesKeyboard(types, false))
}

func (b *Bot) showDifficultyMenu(query *tgbotapi.CallbackQuery, sess session, typeID uint, manage bool) {
	b.answerCallback(query.ID, "", false)
	b.render(query, b.tr.Text("course.select_difficulty", sess.lang),
		b.difficultyFilterKeyboard(sess.lang, typeID, manage))
}

// showCourseList renders the courses of a type under an optional difficulty
// filter, ordered by order index. Shared between the student and the admin
// management surface.
func (b *Bot) showCourseList(ctx context.Context, query *tgbotapi.CallbackQuery, sess session, typeID uint, diff *models.DifficultyLevel, manage bool) {
	courses, err := b.db.ListCourses(ctx, typeID, diff)
	if err != nil {
		b.logger.Error("failed to list courses", zap.Uint("type_id", typeID), zap.Error(err))
		b.answerCallback(query.ID, b.tr.Text("errors.generic", sess.lang), true)
		return
	}
	b.answerCallback(query.ID, "", false)
	text := b.tr.Text("course.available", sess.lang)
	if len(courses) == 0 {
		text = b.tr.Text("course.no_available", sess.lang)
	}
	b.render(query, text, b.courseListKeyboard(sess.lang, courses, typeID, diff, manage))
}

// courseCardText is the shared course summary used by both surfaces.
func (b *Bot) courseCardText(lang string, c models.Course) string {
	return fmt.Sprintf("📚 %s\n\n%s\n\n%s: %s\n%s: %d",
		c.Title,
		c.Description,
		b.tr.Text("course.difficulty_title", lang),
		b.tr.Text("course.difficulty."+string(c.Difficulty), lang),
		b.tr.Text("course.order", lang),
		c.OrderIndex)
}

// showCourseCard sends the course banner with the media menu.
func (b *Bot) showCourseCard(ctx context.Context, query *tgbotapi.CallbackQuery, sess session, tok CourseOpenToken) {
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

	photo := tgbotapi.NewPhoto(query.Message.Chat.ID, tgbotapi.FileID(course.BannerFileID))
	photo.Caption = b.courseCardText(sess.lang, *course)
	photo.ReplyMarkup = b.courseCardKeyboard(sess.lang, *course, tok.Difficulty)
	b.send(photo)
}

// sendCourseMedia delivers one attachment of a course with a back button to
// the course card.
func (b *Bot) sendCourseMedia(ctx context.Context, query *tgbotapi.CallbackQuery, sess session, tok MediaToken) {
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

	chatID := query.Message.Chat.ID
	back := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				b.tr.Text("course.back_to_content", sess.lang),
				CourseOpenToken{CourseID: course.ID, Difficulty: tok.Difficulty}.Encode(),
			),
		),
	)

	switch tok.Kind {
	case mediaVideo:
		video := tgbotapi.NewVideo(chatID, tgbotapi.FileID(course.VideoFileID))
		video.Caption = course.Title
		video.ReplyMarkup = back
		b.send(video)
	case mediaVoice:
		voice := tgbotapi.NewVoice(chatID, tgbotapi.FileID(course.VoiceFileID))
		voice.Caption = course.Title
		voice.ReplyMarkup = back
		b.send(voice)
	case mediaText:
		text := fmt.Sprintf("%s\n\n%s",
			b.tr.Text("course.text_explanation", sess.lang), course.TextExplanation)
		b.replyMarkup(chatID, text, back)
	}
}

// showPracticeImage renders one image of the course's practice set with
// pager controls. The page is clamped so stale buttons stay safe.
func (b *Bot) showPracticeImage(ctx context.Context, query *tgbotapi.CallbackQuery, sess session, tok PracticeToken) {
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
	images, err := course.PracticeImageIDs()
	if err != nil {
		b.logger.Error("broken practice image payload", zap.Uint("course_id", course.ID), zap.Error(err))
		b.answerCallback(query.ID, b.tr.Text("course.practice_broken", sess.lang), true)
		return
	}
	if len(images) == 0 {
		b.answerCallback(query.ID, b.tr.Text("course.no_practice_images", sess.lang), true)
		return
	}
	b.answerCallback(query.ID, "", false)

	page := tok.Page
	if page < 1 {
		page = 1
	}
	if page > len(images) {
		page = len(images)
	}

	var pager []tgbotapi.InlineKeyboardButton
	if page > 1 {
		pager = append(pager, tgbotapi.NewInlineKeyboardButtonData(
			"⬅️", PracticeToken{CourseID: course.ID, Page: page - 1, Difficulty: tok.Difficulty}.Encode()))
	}
	pager = append(pager, tgbotapi.NewInlineKeyboardButtonData(
		fmt.Sprintf("%d/%d", page, len(images)), encodeToken(kindNoop)))
	if page < len(images) {
		pager = append(pager, tgbotapi.NewInlineKeyboardButtonData(
			"➡️", PracticeToken{CourseID: course.ID, Page: page + 1, Difficulty: tok.Difficulty}.Encode()))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		pager,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				b.tr.Text("course.back_to_content", sess.lang),
				CourseOpenToken{CourseID: course.ID, Difficulty: tok.Difficulty}.Encode(),
			),
		),
	)

	photo := tgbotapi.NewPhoto(query.Message.Chat.ID, tgbotapi.FileID(images[page-1]))
	photo.Caption = fmt.Sprintf("%s %d/%d", b.tr.Text("course.practice_image", sess.lang), page, len(images))
	photo.ReplyMarkup = kb
	b.send(photo)
}
