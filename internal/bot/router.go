package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// HandleUpdate routes one incoming update. Exported so the webhook endpoint
// can feed updates directly.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic in message handler",
				zap.Any("panic", r),
				zap.Int64("chat_id", message.Chat.ID))
			b.reply(message.Chat.ID, b.tr.Text("errors.generic", b.tr.Fallback()))
		}
	}()

	if message.From == nil {
		return
	}
	userID := message.From.ID
	chatID := message.Chat.ID
	sess := b.resolve(ctx, message.From)
	if sess.student != nil && sess.student.IsBlocked {
		b.logger.Debug("ignoring blocked user", zap.Int64("user_id", userID))
		return
	}

	st, expired := b.state(userID)
	if expired {
		b.reply(chatID, b.tr.Text("errors.wizard_expired", sess.lang))
	}

	// Commands always win over an in-progress conversation.
	if message.IsCommand() {
		b.clearState(userID)
		switch message.Command() {
		case "start":
			b.handleStart(ctx, message)
		case "admin":
			b.handleAdminCommand(ctx, message, sess)
		default:
			b.replyMarkup(chatID, b.tr.Text("errors.wrong_input", sess.lang),
				b.mainMenuKeyboard(sess.lang, sess.isAdmin()))
		}
		return
	}

	if st != nil {
		b.handleWizardMessage(ctx, message, sess, st)
		return
	}

	b.handleMenuButton(ctx, message, sess)
}

// handleMenuButton matches reply-keyboard presses. Button labels are
// matched across all languages so a user who just switched languages still
// hits the right handler.
func (b *Bot) handleMenuButton(ctx context.Context, message *tgbotapi.Message, sess session) {
	chatID := message.Chat.ID
	text := message.Text
	switch {
	case b.tr.Matches(text, "buttons.courses"):
		if !b.requirePaid(sess, chatID) {
			return
		}
		b.showCourseTypesMessage(ctx, chatID, sess)
	case b.tr.Matches(text, "buttons.about_us"):
		b.sendAbout(chatID, sess)
	case b.tr.Matches(text, "buttons.contact_teacher"):
		b.sendContact(chatID, sess)
	case b.tr.Matches(text, "buttons.settings"):
		b.sendSettings(chatID, sess)
	case b.tr.Matches(text, "course.add"):
		if !b.requireAdmin(sess, chatID) {
			return
		}
		b.startCourseCreation(ctx, chatID, message.From.ID, sess)
	case b.tr.Matches(text, "course_type.add"):
		if !b.requireAdmin(sess, chatID) {
			return
		}
		b.startTypeCreation(chatID, message.From.ID, sess)
	case b.tr.Matches(text, "admin.course_management"):
		if !b.requireAdmin(sess, chatID) {
			return
		}
		b.showManageTypesMessage(ctx, chatID, sess)
	case b.tr.Matches(text, "student.management"):
		if !b.requireAdmin(sess, chatID) {
			return
		}
		b.showStudentMenuMessage(ctx, chatID, sess)
	case b.tr.Matches(text, "admin.admin_management"):
		if !b.requireAdmin(sess, chatID) {
			return
		}
		b.showAdminMenuMessage(chatID, sess)
	default:
		b.logger.Debug("unmatched message", zap.Int64("chat_id", chatID))
	}
}

// handleWizardMessage feeds a message into the user's active conversation.
// A localized cancel press aborts any flow.
func (b *Bot) handleWizardMessage(ctx context.Context, message *tgbotapi.Message, sess session, st *wizardState) {
	if message.Text != "" && b.tr.Matches(message.Text, "buttons.cancel") {
		b.cancelWizard(message.Chat.ID, message.From.ID, sess, st)
		return
	}
	switch st.Flow {
	case flowCourseCreate:
		b.courseCreateMessage(ctx, message, sess, st)
	case flowTypeCreate:
		b.typeCreateMessage(ctx, message, sess, st)
	case flowTypeRename:
		b.typeRenameMessage(ctx, message, sess, st)
	case flowCourseEdit:
		b.courseEditMessage(ctx, message, sess, st)
	case flowAdminAdd:
		b.adminAddMessage(ctx, message, sess, st)
	case flowStudentLookup:
		b.studentLookupMessage(ctx, message, sess, st)
	default:
		b.clearState(message.From.ID)
	}
}

func (b *Bot) cancelWizard(chatID, userID int64, sess session, st *wizardState) {
	b.clearState(userID)
	key := "course.cancelled"
	if st.Flow == flowCourseCreate {
		key = "course.creation_cancelled"
	}
	b.replyMarkup(chatID, b.tr.Text(key, sess.lang), b.mainMenuKeyboard(sess.lang, sess.isAdmin()))
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic in callback handler",
				zap.Any("panic", r),
				zap.String("data", query.Data))
		}
	}()

	if query.From == nil || query.Message == nil {
		return
	}
	sess := b.resolve(ctx, query.From)
	if sess.student != nil && sess.student.IsBlocked {
		b.answerCallback(query.ID, "", false)
		return
	}

	data := query.Data
	kind := tokenKind(data)

	// Student content surface, gated by the payment flag.
	switch kind {
	case kindCourseTypes, kindViewType, kindCourseList, kindCourseOpen, kindMedia, kindPractice:
		if !b.requirePaidCallback(sess, query.ID) {
			return
		}
	}

	// Admin surface.
	switch kind {
	case kindTypePick, kindDiffPick,
		kindManageTypes, kindManageType, kindManageList, kindManageCourse,
		kindEditField, kindEditDiff, kindSetDiff,
		kindDeleteCourse, kindDeleteOK, kindRenameType, kindDeleteType, kindDeleteTypeOK,
		kindStudentMenu, kindStudentList, kindStudentView, kindSetPaid, kindStudentEnter,
		kindAdminMenu, kindAdminList, kindAdminAdd, kindAdminRemove, kindRemoveAsk, kindRemoveOK:
		if !b.requireAdminCallback(sess, query.ID) {
			return
		}
	}

	var err error
	switch kind {
	case kindNoop:
		b.answerCallback(query.ID, "", false)
	case kindCourseTypes:
		b.showCourseTypesEdit(ctx, query, sess)
	case kindViewType:
		var tok ViewTypeToken
		if tok, err = parseViewType(data); err == nil {
			b.showDifficultyMenu(query, sess, tok.TypeID, false)
		}
	case kindCourseList:
		var tok CourseListToken
		if tok, err = parseCourseList(data); err == nil {
			b.showCourseList(ctx, query, sess, tok.TypeID, tok.Difficulty, false)
		}
	case kindCourseOpen:
		var tok CourseOpenToken
		if tok, err = parseCourseOpen(data); err == nil {
			b.showCourseCard(ctx, query, sess, tok)
		}
	case kindMedia:
		var tok MediaToken
		if tok, err = parseMedia(data); err == nil {
			b.sendCourseMedia(ctx, query, sess, tok)
		}
	case kindPractice:
		var tok PracticeToken
		if tok, err = parsePractice(data); err == nil {
			b.showPracticeImage(ctx, query, sess, tok)
		}
	case kindLang:
		var tok LangToken
		if tok, err = parseLang(data); err == nil {
			b.applyLanguage(ctx, query, sess, tok.Code)
		}
	case kindTypePick:
		var tok TypePickToken
		if tok, err = parseTypePick(data); err == nil {
			b.courseCreatePickType(ctx, query, sess, tok.TypeID)
		}
	case kindDiffPick:
		var tok DiffPickToken
		if tok, err = parseDiffPick(data); err == nil {
			b.courseCreatePickDifficulty(query, sess, tok.Level)
		}
	case kindManageTypes:
		b.showManageTypesEdit(ctx, query, sess)
	case kindManageType:
		var tok ManageTypeToken
		if tok, err = parseManageType(data); err == nil {
			b.showManageType(ctx, query, sess, tok.TypeID)
		}
	case kindManageList:
		var tok ManageListToken
		if tok, err = parseManageList(data); err == nil {
			b.showCourseList(ctx, query, sess, tok.TypeID, tok.Difficulty, true)
		}
	case kindManageCourse:
		var tok ManageCourseToken
		if tok, err = parseManageCourse(data); err == nil {
			b.showManageCourse(ctx, query, sess, tok)
		}
	case kindEditField:
		var tok EditFieldToken
		if tok, err = parseEditField(data); err == nil {
			b.startCourseEdit(ctx, query, sess, tok)
		}
	case kindEditDiff:
		var tok EditDiffToken
		if tok, err = parseEditDiff(data); err == nil {
			b.showEditDifficulty(query, sess, tok.CourseID)
		}
	case kindSetDiff:
		var tok SetDiffToken
		if tok, err = parseSetDiff(data); err == nil {
			b.applyCourseDifficulty(ctx, query, sess, tok)
		}
	case kindDeleteCourse:
		var tok DeleteCourseToken
		if tok, err = parseDeleteCourse(data, false); err == nil {
			b.confirmCourseDelete(ctx, query, sess, tok.CourseID)
		}
	case kindDeleteOK:
		var tok DeleteCourseToken
		if tok, err = parseDeleteCourse(data, true); err == nil {
			b.deleteCourse(ctx, query, sess, tok.CourseID)
		}
	case kindRenameType:
		var tok RenameTypeToken
		if tok, err = parseRenameType(data); err == nil {
			b.startTypeRename(query, sess, tok.TypeID)
		}
	case kindDeleteType:
		var tok DeleteTypeToken
		if tok, err = parseDeleteType(data, false); err == nil {
			b.confirmTypeDelete(ctx, query, sess, tok.TypeID)
		}
	case kindDeleteTypeOK:
		var tok DeleteTypeToken
		if tok, err = parseDeleteType(data, true); err == nil {
			b.deleteType(ctx, query, sess, tok.TypeID)
		}
	case kindStudentMenu:
		b.showStudentMenuEdit(ctx, query, sess)
	case kindStudentList:
		var tok StudentListToken
		if tok, err = parseStudentList(data); err == nil {
			b.showStudentList(ctx, query, sess, tok)
		}
	case kindStudentView:
		var tok StudentViewToken
		if tok, err = parseStudentView(data); err == nil {
			b.showStudentCard(ctx, query, sess, tok)
		}
	case kindSetPaid:
		var tok SetPaidToken
		if tok, err = parseSetPaid(data); err == nil {
			b.applyStudentPaid(ctx, query, sess, tok)
		}
	case kindStudentEnter:
		b.startStudentLookup(query, sess)
	case kindAdminMenu:
		b.showAdminMenuEdit(query, sess)
	case kindAdminList:
		b.showAdminList(ctx, query, sess)
	case kindAdminAdd:
		b.startAdminAdd(query, sess)
	case kindAdminRemove:
		b.showAdminRemoveMenu(ctx, query, sess)
	case kindRemoveAsk:
		var tok RemoveAdminToken
		if tok, err = parseRemoveAdmin(data, false); err == nil {
			b.confirmAdminRemove(ctx, query, sess, tok.UserID)
		}
	case kindRemoveOK:
		var tok RemoveAdminToken
		if tok, err = parseRemoveAdmin(data, true); err == nil {
			b.removeAdmin(ctx, query, sess, tok.UserID)
		}
	default:
		b.logger.Warn("unknown callback token", zap.String("data", data))
		b.answerCallback(query.ID, "", false)
	}
	if err != nil {
		b.logger.Warn("malformed callback token", zap.String("data", data), zap.Error(err))
		b.answerCallback(query.ID, "", false)
	}
}
