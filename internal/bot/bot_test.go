package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"lingvobot/internal/i18n"
	"lingvobot/internal/models"
	"lingvobot/internal/storage"
	"lingvobot/internal/storage/stubs"
)

// Note: tgbotapi.BotAPI cannot easily be mocked, so these tests exercise
// the routing and conversation logic with a nil api; outgoing messages land
// in the bot's outbox instead of the network.

func newTestBot(t *testing.T) (*Bot, *stubs.MockDB) {
	t.Helper()
	tr, err := i18n.Load("../../locales", "")
	if err != nil {
		t.Fatalf("Failed to load locales: %v", err)
	}
	db := stubs.NewMockDB()
	return &Bot{
		api:        nil,
		db:         db,
		tr:         tr,
		seedAdmins: map[int64]bool{},
		states:     make(map[int64]*wizardState),
		logger:     zap.NewNop(),
	}, db
}

func seedAdmin(t *testing.T, db *stubs.MockDB, userID int64) *models.Student {
	t.Helper()
	student, err := db.CreateStudent(context.Background(), storage.NewStudent{
		UserID:    userID,
		FirstName: "Admin",
		Language:  "ru",
		IsAdmin:   true,
	})
	if err != nil {
		t.Fatalf("Failed to create admin: %v", err)
	}
	return student
}

func textMessage(userID, chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}
}

func callback(userID, chatID int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:   "q1",
		From: &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{
			MessageID: 1,
			Chat:      &tgbotapi.Chat{ID: chatID},
			Text:      "menu",
		},
		Data: data,
	}
}

func TestCourseCreationFlow(t *testing.T) {
	b, db := newTestBot(t)
	ctx := context.Background()
	userID := int64(123)
	chatID := int64(456)
	seedAdmin(t, db, userID)

	ct, err := db.CreateCourseType(ctx, "Базовый курс", "")
	if err != nil {
		t.Fatalf("Failed to create course type: %v", err)
	}

	// Entry through the admin menu button.
	b.handleMessage(ctx, textMessage(userID, chatID, b.tr.Text("course.add", "ru")))

	st, _ := b.state(userID)
	if st == nil || st.Flow != flowCourseCreate || st.Step != stepCreateSelectType {
		t.Fatalf("Expected course creation at type selection, got %+v", st)
	}

	// Type selection happens via callback.
	b.handleCallbackQuery(ctx, callback(userID, chatID, TypePickToken{TypeID: ct.ID}.Encode()))
	st, _ = b.state(userID)
	if st.Step != stepCreateTitle {
		t.Fatalf("Expected title step, got %d", st.Step)
	}

	// A too-short title keeps the step.
	b.handleMessage(ctx, textMessage(userID, chatID, "ab"))
	st, _ = b.state(userID)
	if st.Step != stepCreateTitle {
		t.Errorf("Expected title step to survive invalid input, got %d", st.Step)
	}

	b.handleMessage(ctx, textMessage(userID, chatID, "Русский с нуля"))
	b.handleMessage(ctx, textMessage(userID, chatID, "Подробное описание курса для начинающих"))

	// Banner step rejects text.
	b.handleMessage(ctx, textMessage(userID, chatID, "не фото"))
	st, _ = b.state(userID)
	if st.Step != stepCreateBanner {
		t.Fatalf("Expected banner step to survive wrong input kind, got %d", st.Step)
	}

	photo := textMessage(userID, chatID, "")
	photo.Photo = []tgbotapi.PhotoSize{{FileID: "banner-small"}, {FileID: "banner-big"}}
	b.handleMessage(ctx, photo)

	video := textMessage(userID, chatID, "")
	video.Video = &tgbotapi.Video{FileID: "video-1"}
	b.handleMessage(ctx, video)

	voice := textMessage(userID, chatID, "")
	voice.Voice = &tgbotapi.Voice{FileID: "voice-1"}
	b.handleMessage(ctx, voice)

	b.handleMessage(ctx, textMessage(userID, chatID, "Длинное текстовое объяснение урока"))

	for _, id := range []string{"practice-1", "practice-2"} {
		p := textMessage(userID, chatID, "")
		p.Photo = []tgbotapi.PhotoSize{{FileID: id}}
		b.handleMessage(ctx, p)
	}
	b.handleMessage(ctx, textMessage(userID, chatID, b.tr.Text("course.practice_finish_button", "ru")))

	st, _ = b.state(userID)
	if st.Step != stepCreateDifficulty {
		t.Fatalf("Expected difficulty step, got %d", st.Step)
	}
	b.handleCallbackQuery(ctx, callback(userID, chatID, DiffPickToken{Level: models.Beginner}.Encode()))

	// Non-numeric and out-of-range order values re-prompt.
	b.handleMessage(ctx, textMessage(userID, chatID, "abc"))
	b.handleMessage(ctx, textMessage(userID, chatID, "41"))
	st, _ = b.state(userID)
	if st == nil || st.Step != stepCreateOrder {
		t.Fatalf("Expected order step to survive invalid input, got %+v", st)
	}

	b.handleMessage(ctx, textMessage(userID, chatID, "7"))

	if st, _ := b.state(userID); st != nil {
		t.Errorf("Expected conversation to be cleared, got %+v", st)
	}

	courses, err := db.ListCourses(ctx, ct.ID, nil)
	if err != nil {
		t.Fatalf("Failed to list courses: %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("Expected exactly one course, got %d", len(courses))
	}
	c := courses[0]
	if c.Title != "Русский с нуля" {
		t.Errorf("Unexpected title: %q", c.Title)
	}
	if c.OrderIndex != 7 {
		t.Errorf("Expected order index 7, got %d", c.OrderIndex)
	}
	if c.BannerFileID != "banner-big" {
		t.Errorf("Expected largest photo variant, got %q", c.BannerFileID)
	}
	if c.Difficulty != models.Beginner {
		t.Errorf("Unexpected difficulty: %q", c.Difficulty)
	}
	images, err := c.PracticeImageIDs()
	if err != nil {
		t.Fatalf("Failed to decode practice images: %v", err)
	}
	if len(images) != 2 || images[0] != "practice-1" {
		t.Errorf("Unexpected practice images: %v", images)
	}
}

func TestCourseCreationWithoutPracticeImages(t *testing.T) {
	b, db := newTestBot(t)
	ctx := context.Background()
	userID := int64(123)
	chatID := int64(456)
	seedAdmin(t, db, userID)
	ct, _ := db.CreateCourseType(ctx, "Разговорный", "")

	sess := b.resolve(ctx, &tgbotapi.User{ID: userID})
	b.startCourseCreation(ctx, chatID, userID, sess)
	b.handleCallbackQuery(ctx, callback(userID, chatID, TypePickToken{TypeID: ct.ID}.Encode()))
	b.handleMessage(ctx, textMessage(userID, chatID, "Диалоги"))
	b.handleMessage(ctx, textMessage(userID, chatID, "Курс разговорной практики"))

	photo := textMessage(userID, chatID, "")
	photo.Photo = []tgbotapi.PhotoSize{{FileID: "banner"}}
	b.handleMessage(ctx, photo)
	video := textMessage(userID, chatID, "")
	video.Video = &tgbotapi.Video{FileID: "video"}
	b.handleMessage(ctx, video)
	voice := textMessage(userID, chatID, "")
	voice.Voice = &tgbotapi.Voice{FileID: "voice"}
	b.handleMessage(ctx, voice)
	b.handleMessage(ctx, textMessage(userID, chatID, "Текстовое объяснение урока"))

	// Finish immediately, without a single practice image.
	b.handleMessage(ctx, textMessage(userID, chatID, b.tr.Text("course.practice_finish_button", "ru")))
	b.handleCallbackQuery(ctx, callback(userID, chatID, DiffPickToken{Level: models.Advanced}.Encode()))
	b.handleMessage(ctx, textMessage(userID, chatID, "1"))

	courses, _ := db.ListCourses(ctx, ct.ID, nil)
	if len(courses) != 1 {
		t.Fatalf("Expected one course, got %d", len(courses))
	}
	images, err := courses[0].PracticeImageIDs()
	if err != nil {
		t.Fatalf("Failed to decode practice images: %v", err)
	}
	if len(images) != 0 {
		t.Errorf("Expected empty practice set, got %v", images)
	}
}

func TestCancelAbortsConversation(t *testing.T) {
	b, db := newTestBot(t)
	ctx := context.Background()
	userID := int64(123)
	chatID := int64(456)
	seedAdmin(t, db, userID)

	b.handleMessage(ctx, textMessage(userID, chatID, b.tr.Text("course_type.add", "ru")))
	if st, _ := b.state(userID); st == nil || st.Flow != flowTypeCreate {
		t.Fatalf("Expected type creation conversation, got %+v", st)
	}

	// Cancel pressed in the other language still matches.
	b.handleMessage(ctx, textMessage(userID, chatID, b.tr.Text("buttons.cancel", "uz")))
	if st, _ := b.state(userID); st != nil {
		t.Errorf("Expected conversation to be cleared, got %+v", st)
	}

	types, _ := db.ListActiveCourseTypes(ctx)
	if len(types) != 0 {
		t.Errorf("Expected no course type after cancel, got %d", len(types))
	}
}

func TestCommandInterruptsConversation(t *testing.T) {
	b, db := newTestBot(t)
	ctx := context.Background()
	userID := int64(123)
	chatID := int64(456)
	seedAdmin(t, db, userID)

	b.handleMessage(ctx, textMessage(userID, chatID, b.tr.Text("course_type.add", "ru")))
	msg := textMessage(userID, chatID, "/start")
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}}
	b.handleMessage(ctx, msg)
	if st, _ := b.state(userID); st != nil {
		t.Errorf("Expected /start to clear the conversation, got %+v", st)
	}

	// The command text must not be consumed as a course type name.
	types, err := db.ListActiveCourseTypes(ctx)
	if err != nil {
		t.Fatalf("Failed to list course types: %v", err)
	}
	if len(types) != 0 {
		t.Errorf("Expected no course types, got %+v", types)
	}
}

func TestFieldEditReturnsToCourseCard(t *testing.T) {
	b, db := newTestBot(t)
	ctx := context.Background()
	userID := int64(123)
	chatID := int64(456)
	seedAdmin(t, db, userID)

	ct, err := db.CreateCourseType(ctx, "Грамматика", "")
	if err != nil {
		t.Fatalf("Failed to create course type: %v", err)
	}
	course, err := db.CreateCourse(ctx, storage.CourseDraft{
		CourseTypeID:   ct.ID,
		Title:          "Старое название",
		Description:    "Описание курса для редактирования",
		Difficulty:     models.Beginner,
		OrderIndex:     1,
		PracticeImages: "[]",
	})
	if err != nil {
		t.Fatalf("Failed to create course: %v", err)
	}

	b.handleCallbackQuery(ctx, callback(userID, chatID, EditFieldToken{CourseID: course.ID, Field: fieldTitle}.Encode()))
	if st, _ := b.state(userID); st == nil {
		t.Fatal("Expected an edit conversation to start")
	}

	b.outbox = nil
	b.handleMessage(ctx, textMessage(userID, chatID, "Новое название"))

	if st, _ := b.state(userID); st != nil {
		t.Errorf("Expected the edit conversation to end, got %+v", st)
	}
	updated, err := db.GetCourse(ctx, course.ID)
	if err != nil {
		t.Fatalf("Failed to load course: %v", err)
	}
	if updated.Title != "Новое название" {
		t.Errorf("Unexpected title after edit: %q", updated.Title)
	}

	// The last outgoing message must be the course detail card, not a bare
	// success notice.
	if len(b.outbox) == 0 {
		t.Fatal("Expected outgoing messages after the edit")
	}
	last, ok := b.outbox[len(b.outbox)-1].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("Expected a new message, got %T", b.outbox[len(b.outbox)-1])
	}
	if !strings.Contains(last.Text, "Новое название") {
		t.Errorf("Expected the course card after the edit, got %q", last.Text)
	}
	if _, ok := last.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); !ok {
		t.Errorf("Expected an inline edit keyboard on the card, got %T", last.ReplyMarkup)
	}
}

func TestNonAdminCannotStartCreation(t *testing.T) {
	b, db := newTestBot(t)
	ctx := context.Background()
	userID := int64(999)
	if _, err := db.CreateStudent(ctx, storage.NewStudent{UserID: userID, Language: "ru"}); err != nil {
		t.Fatalf("Failed to create student: %v", err)
	}

	b.handleMessage(ctx, textMessage(userID, 456, b.tr.Text("course.add", "ru")))
	if st, _ := b.state(userID); st != nil {
		t.Errorf("Expected no conversation for non-admin, got %+v", st)
	}
}

func TestSelfRemovalRejected(t *testing.T) {
	b, db := newTestBot(t)
	ctx := context.Background()
	userID := int64(123)
	seedAdmin(t, db, userID)

	// Both the ask and the confirm step must refuse the acting admin.
	b.handleCallbackQuery(ctx, callback(userID, 456, RemoveAdminToken{UserID: userID}.Encode()))
	b.handleCallbackQuery(ctx, callback(userID, 456, RemoveAdminToken{UserID: userID, Confirmed: true}.Encode()))

	student, err := db.GetStudent(ctx, userID)
	if err != nil {
		t.Fatalf("Failed to load student: %v", err)
	}
	if !student.IsAdmin {
		t.Error("Expected admin flag to survive self-removal attempt")
	}
}

func TestRemoveOtherAdmin(t *testing.T) {
	b, db := newTestBot(t)
	ctx := context.Background()
	actor := int64(123)
	target := int64(321)
	seedAdmin(t, db, actor)
	seedAdmin(t, db, target)

	b.handleCallbackQuery(ctx, callback(actor, 456, RemoveAdminToken{UserID: target, Confirmed: true}.Encode()))

	student, _ := db.GetStudent(ctx, target)
	if student.IsAdmin {
		t.Error("Expected target admin flag to be revoked")
	}
}

func TestAdminAddFlow(t *testing.T) {
	b, db := newTestBot(t)
	ctx := context.Background()
	actor := int64(123)
	target := int64(555)
	seedAdmin(t, db, actor)
	if _, err := db.CreateStudent(ctx, storage.NewStudent{UserID: target, Language: "ru"}); err != nil {
		t.Fatalf("Failed to create student: %v", err)
	}

	b.handleCallbackQuery(ctx, callback(actor, 456, encodeToken(kindAdminAdd)))
	if st, _ := b.state(actor); st == nil || st.Flow != flowAdminAdd {
		t.Fatalf("Expected admin add conversation, got %+v", st)
	}

	// A malformed id re-prompts, then the real one lands.
	b.handleMessage(ctx, textMessage(actor, 456, "not-a-number"))
	b.handleMessage(ctx, textMessage(actor, 456, "555"))

	student, _ := db.GetStudent(ctx, target)
	if !student.IsAdmin {
		t.Error("Expected target to become admin")
	}
	if st, _ := b.state(actor); st != nil {
		t.Errorf("Expected conversation to be cleared, got %+v", st)
	}
}

func TestWizardExpiry(t *testing.T) {
	b, db := newTestBot(t)
	userID := int64(123)
	seedAdmin(t, db, userID)

	st := b.setState(userID, flowTypeCreate, stepTypeName)
	st.Touched = time.Now().Add(-wizardTTL - time.Minute)

	got, expired := b.state(userID)
	if got != nil {
		t.Errorf("Expected stale conversation to be dropped, got %+v", got)
	}
	if !expired {
		t.Error("Expected expiry to be reported")
	}
	if _, expired := b.state(userID); expired {
		t.Error("Expected expiry to be reported only once")
	}
}

func TestStartRegistersStudent(t *testing.T) {
	b, db := newTestBot(t)
	b.seedAdmins[777] = true
	ctx := context.Background()

	msg := textMessage(777, 456, "/start")
	msg.From.FirstName = "Aziza"
	msg.From.UserName = "aziza"
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}}
	b.handleMessage(ctx, msg)

	student, err := db.GetStudent(ctx, 777)
	if err != nil {
		t.Fatalf("Expected student to be registered: %v", err)
	}
	if !student.IsAdmin {
		t.Error("Expected seed admin id to grant the admin flag on first contact")
	}
	if student.FirstName != "Aziza" {
		t.Errorf("Unexpected first name: %q", student.FirstName)
	}
}

func TestSessionFlags(t *testing.T) {
	admin := session{student: &models.Student{IsAdmin: true}}
	if !admin.isPaid() {
		t.Error("Expected admins to pass the paid gate")
	}
	unpaid := session{student: &models.Student{}}
	if unpaid.isPaid() || unpaid.isAdmin() {
		t.Error("Expected unpaid non-admin to fail both gates")
	}
	unknown := session{}
	if unknown.isPaid() || unknown.isAdmin() {
		t.Error("Expected unknown user to fail both gates")
	}
}
