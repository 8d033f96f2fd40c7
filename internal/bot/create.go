package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"lingvobot/internal/models"
	"lingvobot/internal/storage"
)

// Wizard data keys of the course creation flow.
const (
	dataTypeID      = "course_type_id"
	dataTitle       = "title"
	dataDescription = "description"
	dataBanner      = "banner_file_id"
	dataVideo       = "video_file_id"
	dataVoice       = "voice_file_id"
	dataText        = "text_explanation"
	dataPractice    = "practice_images"
	dataDifficulty  = "difficulty"
)

// Field length minimums, counted in runes after trimming.
const (
	minTitleLen = 3
	minTextLen  = 10
)

const (
	orderMin = 1
	orderMax = 40
)

func trimmedLen(s string) int {
	return len([]rune(strings.TrimSpace(s)))
}

// startCourseCreation opens the creation wizard. Without at least one
// course type there is nothing to attach a course to, so the flow refuses
// to start.
func (b *Bot) startCourseCreation(ctx context.Context, chatID, userID int64, sess session) {
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
	b.setState(userID, flowCourseCreate, stepCreateSelectType)
	b.replyMarkup(chatID, b.tr.Text("course_type.select", sess.lang), wizardTypeKeyboard(types))
}

// courseCreatePickType handles the type selection callback of the wizard.
func (b *Bot) courseCreatePickType(ctx context.Context, query *tgbotapi.CallbackQuery, sess session, typeID uint) {
	st, _ := b.state(query.From.ID)
	if st == nil || st.Flow != flowCourseCreate || st.Step != stepCreateSelectType {
		b.answerCallback(query.ID, "", false)
		return
	}
	if _, err := b.db.GetCourseType(ctx, typeID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.answerCallback(query.ID, b.tr.Text("course_type.not_found", sess.lang), true)
			return
		}
		b.logger.Error("failed to load course type", zap.Uint("type_id", typeID), zap.Error(err))
		b.answerCallback(query.ID, b.tr.Text("errors.generic", sess.lang), true)
		return
	}
	st.Data[dataTypeID] = typeID
	st.Step = stepCreateTitle
	b.answerCallback(query.ID, "", false)
	b.replyMarkup(query.Message.Chat.ID, b.tr.Text("course.add_title", sess.lang), b.cancelKeyboard(sess.lang))
}

// courseCreatePickDifficulty handles the difficulty callback of the wizard.
func (b *Bot) courseCreatePickDifficulty(query *tgbotapi.CallbackQuery, sess session, level models.DifficultyLevel) {
	st, _ := b.state(query.From.ID)
	if st == nil || st.Flow != flowCourseCreate || st.Step != stepCreateDifficulty {
		b.answerCallback(query.ID, "", false)
		return
	}
	st.Data[dataDifficulty] = string(level)
	st.Step = stepCreateOrder
	b.answerCallback(query.ID, "", false)
	b.replyMarkup(query.Message.Chat.ID, b.tr.Text("course.enter_order", sess.lang), b.cancelKeyboard(sess.lang))
}

// courseCreateMessage advances the creation wizard with one message. A
// message of the wrong kind re-prompts and keeps the step unchanged.
func (b *Bot) courseCreateMessage(ctx context.Context, message *tgbotapi.Message, sess session, st *wizardState) {
	chatID := message.Chat.ID

	switch st.Step {
	case stepCreateSelectType, stepCreateDifficulty:
		// These steps advance through inline buttons only.
		b.reply(chatID, b.tr.Text("errors.wrong_input", sess.lang))

	case stepCreateTitle:
		if trimmedLen(message.Text) < minTitleLen {
			b.reply(chatID, b.tr.Text("course.title_too_short", sess.lang))
			return
		}
		st.Data[dataTitle] = strings.TrimSpace(message.Text)
		st.Step = stepCreateDescription
		b.reply(chatID, b.tr.Text("course.add_description", sess.lang))

	case stepCreateDescription:
		if trimmedLen(message.Text) < minTextLen {
			b.reply(chatID, b.tr.Text("course.description_too_short", sess.lang))
			return
		}
		st.Data[dataDescription] = strings.TrimSpace(message.Text)
		st.Step = stepCreateBanner
		b.reply(chatID, b.tr.Text("course.add_banner", sess.lang))

	case stepCreateBanner:
		if len(message.Photo) == 0 {
			b.reply(chatID, b.tr.Text("course.need_photo", sess.lang))
			return
		}
		st.Data[dataBanner] = largestPhotoID(message.Photo)
		st.Step = stepCreateVideo
		b.reply(chatID, b.tr.Text("course.add_video", sess.lang))

	case stepCreateVideo:
		if message.Video == nil {
			b.reply(chatID, b.tr.Text("course.need_video", sess.lang))
			return
		}
		st.Data[dataVideo] = message.Video.FileID
		st.Step = stepCreateVoice
		b.reply(chatID, b.tr.Text("course.add_voice", sess.lang))

	case stepCreateVoice:
		if message.Voice == nil {
			b.reply(chatID, b.tr.Text("course.need_voice", sess.lang))
			return
		}
		st.Data[dataVoice] = message.Voice.FileID
		st.Step = stepCreateText
		b.reply(chatID, b.tr.Text("course.add_text", sess.lang))

	case stepCreateText:
		if trimmedLen(message.Text) < minTextLen {
			b.reply(chatID, b.tr.Text("course.description_too_short", sess.lang))
			return
		}
		st.Data[dataText] = strings.TrimSpace(message.Text)
		st.Data[dataPractice] = []string{}
		st.Step = stepCreatePractice
		b.replyMarkup(chatID, b.tr.Text("course.add_practice_images", sess.lang), b.practiceEntryKeyboard(sess.lang))

	case stepCreatePractice:
		if len(message.Photo) > 0 {
			images := append(st.strs(dataPractice), largestPhotoID(message.Photo))
			st.Data[dataPractice] = images
			b.reply(chatID, fmt.Sprintf(b.tr.Text("course.practice_image_added", sess.lang), len(images)))
			return
		}
		if b.tr.Matches(message.Text, "course.practice_finish_button") {
			st.Step = stepCreateDifficulty
			b.replyMarkup(chatID, b.tr.Text("course.select_difficulty", sess.lang), b.wizardDifficultyKeyboard(sess.lang))
			return
		}
		b.reply(chatID, b.tr.Text("errors.wrong_input", sess.lang))

	case stepCreateOrder:
		order, err := strconv.Atoi(strings.TrimSpace(message.Text))
		if err != nil || order < orderMin || order > orderMax {
			b.reply(chatID, b.tr.Text("course.invalid_order", sess.lang))
			return
		}
		b.finishCourseCreation(ctx, chatID, message.From.ID, sess, st, order)
	}
}

// finishCourseCreation assembles the draft and writes the course in one
// call, so an abandoned wizard never leaves a partial row behind.
func (b *Bot) finishCourseCreation(ctx context.Context, chatID, userID int64, sess session, st *wizardState, order int) {
	level, _ := models.ParseDifficulty(st.str(dataDifficulty))
	draft := storage.CourseDraft{
		CourseTypeID:    st.uintVal(dataTypeID),
		Title:           st.str(dataTitle),
		Description:     st.str(dataDescription),
		Difficulty:      level,
		OrderIndex:      order,
		BannerFileID:    st.str(dataBanner),
		VideoFileID:     st.str(dataVideo),
		VoiceFileID:     st.str(dataVoice),
		TextExplanation: st.str(dataText),
		PracticeImages:  models.EncodePracticeImages(st.strs(dataPractice)),
	}
	course, err := b.db.CreateCourse(ctx, draft)
	if err != nil {
		b.logger.Error("failed to create course", zap.Error(err))
		b.reply(chatID, b.tr.Text("errors.generic", sess.lang))
		return
	}
	b.clearState(userID)
	b.logger.Info("course created",
		zap.Uint("course_id", course.ID),
		zap.Int64("admin_id", userID))
	b.replyMarkup(chatID,
		fmt.Sprintf(b.tr.Text("course.created_success", sess.lang), course.Title),
		b.mainMenuKeyboard(sess.lang, true))
}

// largestPhotoID picks the highest resolution variant Telegram offers.
func largestPhotoID(sizes []tgbotapi.PhotoSize) string {
	return sizes[len(sizes)-1].FileID
}
