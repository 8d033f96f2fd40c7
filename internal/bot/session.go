package bot

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"lingvobot/internal/i18n"
	"lingvobot/internal/models"
	"lingvobot/internal/storage"
)

// session carries the resolved student and reply language for one update.
type session struct {
	student *models.Student
	lang    string
}

func (s session) isAdmin() bool {
	return s.student != nil && s.student.IsAdmin
}

func (s session) isPaid() bool {
	return s.student != nil && (s.student.IsPaid || s.student.IsAdmin)
}

// resolve loads the student record for a Telegram user. Unknown users get a
// nil student and the default language; registration happens only in /start.
func (b *Bot) resolve(ctx context.Context, user *tgbotapi.User) session {
	if user == nil {
		return session{lang: b.tr.Fallback()}
	}
	student, err := b.db.GetStudent(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			b.logger.Error("failed to load student", zap.Int64("user_id", user.ID), zap.Error(err))
		}
		return session{lang: b.tr.Fallback()}
	}
	lang := student.Language
	if !i18n.Supported(lang) {
		lang = b.tr.Fallback()
	}
	return session{student: student, lang: lang}
}

// registerStudent creates or refreshes the student row for /start. Seed
// admin ids grant the admin flag only at row creation; afterwards the
// database flag is the sole authority.
func (b *Bot) registerStudent(ctx context.Context, user *tgbotapi.User) (*models.Student, bool, error) {
	student, err := b.db.GetStudent(ctx, user.ID)
	if err == nil {
		if err := b.db.RefreshStudentName(ctx, user.ID, user.UserName, user.FirstName, user.LastName); err != nil {
			b.logger.Warn("failed to refresh student name", zap.Int64("user_id", user.ID), zap.Error(err))
		}
		return student, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, err
	}

	created, err := b.db.CreateStudent(ctx, storage.NewStudent{
		UserID:    user.ID,
		Username:  user.UserName,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Language:  b.tr.Fallback(),
		IsAdmin:   b.seedAdmins[user.ID],
	})
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// requireAdmin gates a message handler. Non-admins get a localized denial.
func (b *Bot) requireAdmin(sess session, chatID int64) bool {
	if sess.isAdmin() {
		return true
	}
	b.reply(chatID, b.tr.Text("admin.denied", sess.lang))
	return false
}

// requireAdminCallback gates a callback handler with a modal alert.
func (b *Bot) requireAdminCallback(sess session, queryID string) bool {
	if sess.isAdmin() {
		return true
	}
	b.answerCallback(queryID, b.tr.Text("admin.denied_alert", sess.lang), true)
	return false
}

// requirePaid gates student course content behind the payment flag.
func (b *Bot) requirePaid(sess session, chatID int64) bool {
	if sess.isPaid() {
		return true
	}
	b.reply(chatID, b.tr.Text("payment.required", sess.lang))
	return false
}

func (b *Bot) requirePaidCallback(sess session, queryID string) bool {
	if sess.isPaid() {
		return true
	}
	b.answerCallback(queryID, b.tr.Text("payment.required_alert", sess.lang), true)
	return false
}
