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

func listFilter(kind studentListKind) storage.StudentFilter {
	switch kind {
	case listPaid:
		return storage.PaidStudents
	case listUnpaid:
		return storage.UnpaidStudents
	}
	return storage.AllStudents
}

// studentCounts loads the slice sizes shown on the menu buttons.
func (b *Bot) studentCounts(ctx context.Context) (total, paid, unpaid int, err error) {
	all, err := b.db.ListStudents(ctx, storage.AllStudents)
	if err != nil {
		return 0, 0, 0, err
	}
	for _, s := range all {
		if s.IsPaid {
			paid++
		} else {
			unpaid++
		}
	}
	return len(all), paid, unpaid, nil
}

func (b *Bot) showStudentMenuMessage(ctx context.Context, chatID int64, sess session) {
	total, paid, unpaid, err := b.studentCounts(ctx)
	if err != nil {
		b.logger.Error("failed to count students", zap.Error(err))
		b.reply(chatID, b.tr.Text("errors.generic", sess.lang))
		return
	}
	b.replyMarkup(chatID, b.tr.Text("student.management", sess.lang),
		b.studentMenuKeyboard(sess.lang, total, paid, unpaid))
}

func (b *Bot) showStudentMenuEdit(ctx context.Context, query *tgbotapi.CallbackQuery, sess session) {
	total, paid, unpaid, err := b.studentCounts(ctx)
	if err != nil {
		b.logger.Error("failed to count students", zap.Error(err))
		b.answerCallback(query.ID, b.tr.Text("errors.generic", sess.lang), true)
		return
	}
	b.answerCallback(query.ID, "", false)
	b.render(query, b.tr.Text("student.management", sess.lang),
		b.studentMenuKeyboard(sess.lang, total, paid, unpaid))
}

func (b *Bot) showStudentList(ctx context.Context, query *tgbotapi.CallbackQuery, sess session, tok StudentListToken) {
	students, err := b.db.ListStudents(ctx, listFilter(tok.Kind))
	if err != nil {
		b.logger.Error("failed to list students", zap.Error(err))
		b.answerCallback(query.ID, b.tr.Text("errors.generic", sess.lang), true)
		return
	}
	b.answerCallback(query.ID, "", false)
	if len(students) == 0 {
		back := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(b.tr.Text("buttons.back", sess.lang), encodeToken(kindStudentMenu)),
			),
		)
		b.render(query, b.tr.Text("student.no_students", sess.lang), back)
		return
	}
	page, current, totalPages := paginate(students, tok.Page, studentsPerPage)
	b.render(query, b.tr.Text("student.select_student", sess.lang),
		b.studentListKeyboard(sess.lang, page, tok.Kind, current, totalPages))
}

func (b *Bot) studentCardText(lang string, s models.Student) string {
	yes := b.tr.Text("student.yes", lang)
	no := b.tr.Text("student.no", lang)
	flag := func(v bool) string {
		if v {
			return yes
		}
		return no
	}
	username := b.tr.Text("student.no_username", lang)
	if s.Username != "" {
		username = fmt.Sprintf(b.tr.Text("student.username", lang), s.Username)
	}
	payment := b.tr.Text("student.unpaid", lang)
	if s.IsPaid {
		payment = b.tr.Text("student.paid", lang)
	}
	lines := []string{
		b.tr.Text("student.info", lang),
		"",
		fmt.Sprintf(b.tr.Text("student.id", lang), s.UserID),
		fmt.Sprintf(b.tr.Text("student.name", lang), s.FullName()),
		username,
		fmt.Sprintf(b.tr.Text("student.language", lang), s.Language),
		fmt.Sprintf(b.tr.Text("student.payment_status", lang), payment),
		fmt.Sprintf(b.tr.Text("student.admin_status", lang), flag(s.IsAdmin)),
		fmt.Sprintf(b.tr.Text("student.blocked_status", lang), flag(s.IsBlocked)),
	}
	return strings.Join(lines, "\n")
}

func (b *Bot) showStudentCard(ctx context.Context, query *tgbotapi.CallbackQuery, sess session, tok StudentViewToken) {
	student, err := b.db.GetStudent(ctx, tok.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.answerCallback(query.ID, b.tr.Text("student.not_found", sess.lang), true)
			return
		}
		b.logger.Error("failed to load student", zap.Int64("user_id", tok.UserID), zap.Error(err))
		b.answerCallback(query.ID, b.tr.Text("errors.generic", sess.lang), true)
		return
	}
	b.answerCallback(query.ID, "", false)
	b.render(query, b.studentCardText(sess.lang, *student),
		b.studentCardKeyboard(sess.lang, *student, tok.Kind, tok.Page))
}

// applyStudentPaid flips the payment flag and redraws the card.
func (b *Bot) applyStudentPaid(ctx context.Context, query *tgbotapi.CallbackQuery, sess session, tok SetPaidToken) {
	student, err := b.db.SetPaid(ctx, tok.UserID, tok.Paid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.answerCallback(query.ID, b.tr.Text("student.not_found", sess.lang), true)
			return
		}
		b.logger.Error("failed to update payment flag", zap.Int64("user_id", tok.UserID), zap.Error(err))
		b.answerCallback(query.ID, b.tr.Text("errors.generic", sess.lang), true)
		return
	}
	b.logger.Info("payment flag changed",
		zap.Int64("user_id", tok.UserID),
		zap.Bool("paid", tok.Paid),
		zap.Int64("admin_id", query.From.ID))
	b.answerCallback(query.ID, b.tr.Text("student.payment_changed", sess.lang), false)
	b.render(query, b.studentCardText(sess.lang, *student),
		b.studentCardKeyboard(sess.lang, *student, tok.Kind, tok.Page))
}

// startStudentLookup begins the find-by-id conversation.
func (b *Bot) startStudentLookup(query *tgbotapi.CallbackQuery, sess session) {
	b.setState(query.From.ID, flowStudentLookup, stepStudentID)
	b.answerCallback(query.ID, "", false)
	b.replyMarkup(query.Message.Chat.ID, b.tr.Text("student.enter_id_prompt", sess.lang), b.cancelKeyboard(sess.lang))
}

// studentLookupMessage resolves the entered id. A wrong id re-prompts so
// the admin can correct a typo without restarting.
func (b *Bot) studentLookupMessage(ctx context.Context, message *tgbotapi.Message, sess session, st *wizardState) {
	chatID := message.Chat.ID
	id, err := strconv.ParseInt(strings.TrimSpace(message.Text), 10, 64)
	if err != nil || id <= 0 {
		b.reply(chatID, b.tr.Text("student.invalid_id", sess.lang))
		return
	}
	student, err := b.db.GetStudent(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.reply(chatID, b.tr.Text("student.not_found", sess.lang))
			return
		}
		b.clearState(message.From.ID)
		b.logger.Error("failed to load student", zap.Int64("user_id", id), zap.Error(err))
		b.reply(chatID, b.tr.Text("errors.generic", sess.lang))
		return
	}
	b.clearState(message.From.ID)
	b.replyMarkup(chatID, b.studentCardText(sess.lang, *student),
		b.studentCardKeyboard(sess.lang, *student, listAll, 1))
	b.replyMarkup(chatID, b.tr.Text("admin.welcome", sess.lang), b.mainMenuKeyboard(sess.lang, true))
}
