package bot

import (
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"lingvobot/internal/i18n"
	"lingvobot/internal/storage"
)

// Bot represents the Telegram bot wrapper.
type Bot struct {
	api        *tgbotapi.BotAPI
	db         storage.Storage
	tr         *i18n.Provider
	seedAdmins map[int64]bool
	states     map[int64]*wizardState
	statesMu   sync.Mutex
	logger     *zap.Logger

	// outbox collects outgoing messages when no api is attached (tests).
	outbox []tgbotapi.Chattable
}

// flowID names a multi-step conversation.
type flowID int

const (
	flowNone flowID = iota
	flowCourseCreate
	flowTypeCreate
	flowTypeRename
	flowCourseEdit
	flowAdminAdd
	flowStudentLookup
)

// stepID names a single step inside a flow. Step identifiers are never bare
// strings; every state of every flow lives in this one closed enum.
type stepID int

const (
	stepNone stepID = iota

	// course creation, in prompt order
	stepCreateSelectType
	stepCreateTitle
	stepCreateDescription
	stepCreateBanner
	stepCreateVideo
	stepCreateVoice
	stepCreateText
	stepCreatePractice
	stepCreateDifficulty
	stepCreateOrder

	// course type flows
	stepTypeName
	stepTypeNewName

	// course management: one awaiting step, the edited field is in Data
	stepEditAwait

	// admin management
	stepAdminID

	// student lookup by id
	stepStudentID
)

// wizardTTL is how long an abandoned conversation survives. Expiry is
// checked lazily on the user's next update.
const wizardTTL = 30 * time.Minute

// wizardState tracks one user's in-progress conversation.
type wizardState struct {
	Flow    flowID
	Step    stepID
	Data    map[string]any
	Touched time.Time
}
