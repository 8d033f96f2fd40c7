package bot

import (
	"fmt"
	"strconv"
	"strings"

	"lingvobot/internal/models"
)

// Callback payloads are structured action tokens: a kind tag followed by
// colon-separated arguments. Every family has an Encode method and a parse
// function that round-trip each other; handlers never split raw strings.
const tokenSep = ":"

// Token kinds. The kind is always the first segment of the payload.
const (
	kindCourseTypes  = "utypes"
	kindViewType     = "vtype"
	kindCourseList   = "clist"
	kindCourseOpen   = "crs"
	kindMedia        = "media"
	kindPractice     = "practice"
	kindLang         = "lang"
	kindNoop         = "noop"
	kindTypePick     = "ctype"
	kindDiffPick     = "diff"
	kindManageTypes  = "mtypes"
	kindManageType   = "mtype"
	kindManageList   = "mlist"
	kindManageCourse = "mcrs"
	kindEditField    = "edit"
	kindEditDiff     = "editdiff"
	kindSetDiff      = "setdiff"
	kindDeleteCourse = "delcrs"
	kindDeleteOK     = "delcrsok"
	kindRenameType   = "rentype"
	kindDeleteType   = "deltype"
	kindDeleteTypeOK = "deltypeok"
	kindStudentMenu  = "stmenu"
	kindStudentList  = "stlist"
	kindStudentView  = "stview"
	kindSetPaid      = "stpaid"
	kindStudentEnter = "stenter"
	kindAdminMenu    = "admmenu"
	kindAdminList    = "admlist"
	kindAdminAdd     = "admadd"
	kindAdminRemove  = "admrm"
	kindRemoveAsk    = "admrmc"
	kindRemoveOK     = "admrmok"
)

// difficultyAll is the list filter meaning "no difficulty restriction".
const difficultyAll = "all"

// courseField names an editable course attribute inside edit tokens.
type courseField string

const (
	fieldTitle       courseField = "title"
	fieldDescription courseField = "description"
	fieldBanner      courseField = "banner"
	fieldVideo       courseField = "video"
	fieldVoice       courseField = "voice"
	fieldText        courseField = "text"
	fieldOrder       courseField = "order"
)

func validCourseField(s string) bool {
	switch courseField(s) {
	case fieldTitle, fieldDescription, fieldBanner, fieldVideo, fieldVoice, fieldText, fieldOrder:
		return true
	}
	return false
}

func encodeToken(kind string, args ...string) string {
	if len(args) == 0 {
		return kind
	}
	return kind + tokenSep + strings.Join(args, tokenSep)
}

// tokenArgs validates the kind tag and argument count of a payload.
func tokenArgs(data, kind string, want int) ([]string, error) {
	parts := strings.Split(data, tokenSep)
	if parts[0] != kind {
		return nil, fmt.Errorf("token %q: expected kind %q", data, kind)
	}
	if len(parts)-1 != want {
		return nil, fmt.Errorf("token %q: expected %d args, got %d", data, want, len(parts)-1)
	}
	return parts[1:], nil
}

func parseUintArg(data, arg string) (uint, error) {
	v, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("token %q: bad id %q", data, arg)
	}
	return uint(v), nil
}

func parseInt64Arg(data, arg string) (int64, error) {
	v, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("token %q: bad id %q", data, arg)
	}
	return v, nil
}

// parseDifficultyFilter maps an argument to an optional difficulty filter.
// The literal "all" means no filter.
func parseDifficultyFilter(data, arg string) (*models.DifficultyLevel, error) {
	if arg == difficultyAll {
		return nil, nil
	}
	level, ok := models.ParseDifficulty(arg)
	if !ok {
		return nil, fmt.Errorf("token %q: unknown difficulty %q", data, arg)
	}
	return &level, nil
}

func difficultyArg(level *models.DifficultyLevel) string {
	if level == nil {
		return difficultyAll
	}
	return string(*level)
}

// ViewTypeToken opens the difficulty picker for a course type.
type ViewTypeToken struct{ TypeID uint }

func (t ViewTypeToken) Encode() string {
	return encodeToken(kindViewType, strconv.FormatUint(uint64(t.TypeID), 10))
}

func parseViewType(data string) (ViewTypeToken, error) {
	args, err := tokenArgs(data, kindViewType, 1)
	if err != nil {
		return ViewTypeToken{}, err
	}
	id, err := parseUintArg(data, args[0])
	if err != nil {
		return ViewTypeToken{}, err
	}
	return ViewTypeToken{TypeID: id}, nil
}

// CourseListToken shows the course list of a type under a difficulty filter.
type CourseListToken struct {
	TypeID     uint
	Difficulty *models.DifficultyLevel
}

func (t CourseListToken) Encode() string {
	return encodeToken(kindCourseList, strconv.FormatUint(uint64(t.TypeID), 10), difficultyArg(t.Difficulty))
}

func parseCourseList(data string) (CourseListToken, error) {
	args, err := tokenArgs(data, kindCourseList, 2)
	if err != nil {
		return CourseListToken{}, err
	}
	id, err := parseUintArg(data, args[0])
	if err != nil {
		return CourseListToken{}, err
	}
	diff, err := parseDifficultyFilter(data, args[1])
	if err != nil {
		return CourseListToken{}, err
	}
	return CourseListToken{TypeID: id, Difficulty: diff}, nil
}

// CourseOpenToken opens a course card. The difficulty filter is carried so
// the back button can restore the list the user came from.
type CourseOpenToken struct {
	CourseID   uint
	Difficulty *models.DifficultyLevel
}

func (t CourseOpenToken) Encode() string {
	return encodeToken(kindCourseOpen, strconv.FormatUint(uint64(t.CourseID), 10), difficultyArg(t.Difficulty))
}

func parseCourseOpen(data string) (CourseOpenToken, error) {
	args, err := tokenArgs(data, kindCourseOpen, 2)
	if err != nil {
		return CourseOpenToken{}, err
	}
	id, err := parseUintArg(data, args[0])
	if err != nil {
		return CourseOpenToken{}, err
	}
	diff, err := parseDifficultyFilter(data, args[1])
	if err != nil {
		return CourseOpenToken{}, err
	}
	return CourseOpenToken{CourseID: id, Difficulty: diff}, nil
}

// mediaKind selects which attachment of a course to deliver.
type mediaKind string

const (
	mediaVideo mediaKind = "video"
	mediaVoice mediaKind = "voice"
	mediaText  mediaKind = "text"
)

// MediaToken delivers one media attachment of a course.
type MediaToken struct {
	Kind       mediaKind
	CourseID   uint
	Difficulty *models.DifficultyLevel
}

func (t MediaToken) Encode() string {
	return encodeToken(kindMedia, string(t.Kind), strconv.FormatUint(uint64(t.CourseID), 10), difficultyArg(t.Difficulty))
}

func parseMedia(data string) (MediaToken, error) {
	args, err := tokenArgs(data, kindMedia, 3)
	if err != nil {
		return MediaToken{}, err
	}
	kind := mediaKind(args[0])
	switch kind {
	case mediaVideo, mediaVoice, mediaText:
	default:
		return MediaToken{}, fmt.Errorf("token %q: unknown media kind %q", data, args[0])
	}
	id, err := parseUintArg(data, args[1])
	if err != nil {
		return MediaToken{}, err
	}
	diff, err := parseDifficultyFilter(data, args[2])
	if err != nil {
		return MediaToken{}, err
	}
	return MediaToken{Kind: kind, CourseID: id, Difficulty: diff}, nil
}

// PracticeToken shows one page of a course's practice image set.
type PracticeToken struct {
	CourseID   uint
	Page       int
	Difficulty *models.DifficultyLevel
}

func (t PracticeToken) Encode() string {
	return encodeToken(kindPractice,
		strconv.FormatUint(uint64(t.CourseID), 10),
		strconv.Itoa(t.Page),
		difficultyArg(t.Difficulty))
}

func parsePractice(data string) (PracticeToken, error) {
	args, err := tokenArgs(data, kindPractice, 3)
	if err != nil {
		return PracticeToken{}, err
	}
	id, err := parseUintArg(data, args[0])
	if err != nil {
		return PracticeToken{}, err
	}
	page, err := strconv.Atoi(args[1])
	if err != nil || page < 0 {
		return PracticeToken{}, fmt.Errorf("token %q: bad page %q", data, args[1])
	}
	diff, err := parseDifficultyFilter(data, args[2])
	if err != nil {
		return PracticeToken{}, err
	}
	return PracticeToken{CourseID: id, Page: page, Difficulty: diff}, nil
}

// LangToken switches the user's interface language.
type LangToken struct{ Code string }

func (t LangToken) Encode() string { return encodeToken(kindLang, t.Code) }

func parseLang(data string) (LangToken, error) {
	args, err := tokenArgs(data, kindLang, 1)
	if err != nil {
		return LangToken{}, err
	}
	return LangToken{Code: args[0]}, nil
}

// TypePickToken selects a course type inside the creation wizard.
type TypePickToken struct{ TypeID uint }

func (t TypePickToken) Encode() string {
	return encodeToken(kindTypePick, strconv.FormatUint(uint64(t.TypeID), 10))
}

func parseTypePick(data string) (TypePickToken, error) {
	args, err := tokenArgs(data, kindTypePick, 1)
	if err != nil {
		return TypePickToken{}, err
	}
	id, err := parseUintArg(data, args[0])
	if err != nil {
		return TypePickToken{}, err
	}
	return TypePickToken{TypeID: id}, nil
}

// DiffPickToken selects the difficulty inside the creation wizard.
type DiffPickToken struct{ Level models.DifficultyLevel }

func (t DiffPickToken) Encode() string { return encodeToken(kindDiffPick, string(t.Level)) }

func parseDiffPick(data string) (DiffPickToken, error) {
	args, err := tokenArgs(data, kindDiffPick, 1)
	if err != nil {
		return DiffPickToken{}, err
	}
	level, ok := models.ParseDifficulty(args[0])
	if !ok {
		return DiffPickToken{}, fmt.Errorf("token %q: unknown difficulty %q", data, args[0])
	}
	return DiffPickToken{Level: level}, nil
}

// ManageTypeToken opens the admin menu of one course type.
type ManageTypeToken struct{ TypeID uint }

func (t ManageTypeToken) Encode() string {
	return encodeToken(kindManageType, strconv.FormatUint(uint64(t.TypeID), 10))
}

func parseManageType(data string) (ManageTypeToken, error) {
	args, err := tokenArgs(data, kindManageType, 1)
	if err != nil {
		return ManageTypeToken{}, err
	}
	id, err := parseUintArg(data, args[0])
	if err != nil {
		return ManageTypeToken{}, err
	}
	return ManageTypeToken{TypeID: id}, nil
}

// ManageListToken shows the admin course list of a type.
type ManageListToken struct {
	TypeID     uint
	Difficulty *models.DifficultyLevel
}

func (t ManageListToken) Encode() string {
	return encodeToken(kindManageList, strconv.FormatUint(uint64(t.TypeID), 10), difficultyArg(t.Difficulty))
}

func parseManageList(data string) (ManageListToken, error) {
	args, err := tokenArgs(data, kindManageList, 2)
	if err != nil {
		return ManageListToken{}, err
	}
	id, err := parseUintArg(data, args[0])
	if err != nil {
		return ManageListToken{}, err
	}
	diff, err := parseDifficultyFilter(data, args[1])
	if err != nil {
		return ManageListToken{}, err
	}
	return ManageListToken{TypeID: id, Difficulty: diff}, nil
}

// ManageCourseToken opens the admin edit card of a course.
type ManageCourseToken struct {
	CourseID   uint
	Difficulty *models.DifficultyLevel
}

func (t ManageCourseToken) Encode() string {
	return encodeToken(kindManageCourse, strconv.FormatUint(uint64(t.CourseID), 10), difficultyArg(t.Difficulty))
}

func parseManageCourse(data string) (ManageCourseToken, error) {
	args, err := tokenArgs(data, kindManageCourse, 2)
	if err != nil {
		return ManageCourseToken{}, err
	}
	id, err := parseUintArg(data, args[0])
	if err != nil {
		return ManageCourseToken{}, err
	}
	diff, err := parseDifficultyFilter(data, args[1])
	if err != nil {
		return ManageCourseToken{}, err
	}
	return ManageCourseToken{CourseID: id, Difficulty: diff}, nil
}

// EditFieldToken starts a single-field edit conversation for a course.
type EditFieldToken struct {
	Field    courseField
	CourseID uint
}

func (t EditFieldToken) Encode() string {
	return encodeToken(kindEditField, string(t.Field), strconv.FormatUint(uint64(t.CourseID), 10))
}

func parseEditField(data string) (EditFieldToken, error) {
	args, err := tokenArgs(data, kindEditField, 2)
	if err != nil {
		return EditFieldToken{}, err
	}
	if !validCourseField(args[0]) {
		return EditFieldToken{}, fmt.Errorf("token %q: unknown field %q", data, args[0])
	}
	id, err := parseUintArg(data, args[1])
	if err != nil {
		return EditFieldToken{}, err
	}
	return EditFieldToken{Field: courseField(args[0]), CourseID: id}, nil
}

// EditDiffToken opens the difficulty picker for an existing course.
type EditDiffToken struct{ CourseID uint }

func (t EditDiffToken) Encode() string {
	return encodeToken(kindEditDiff, strconv.FormatUint(uint64(t.CourseID), 10))
}

func parseEditDiff(data string) (EditDiffToken, error) {
	args, err := tokenArgs(data, kindEditDiff, 1)
	if err != nil {
		return EditDiffToken{}, err
	}
	id, err := parseUintArg(data, args[0])
	if err != nil {
		return EditDiffToken{}, err
	}
	return EditDiffToken{CourseID: id}, nil
}

// SetDiffToken applies a new difficulty to an existing course.
type SetDiffToken struct {
	CourseID uint
	Level    models.DifficultyLevel
}

func (t SetDiffToken) Encode() string {
	return encodeToken(kindSetDiff, strconv.FormatUint(uint64(t.CourseID), 10), string(t.Level))
}

func parseSetDiff(data string) (SetDiffToken, error) {
	args, err := tokenArgs(data, kindSetDiff, 2)
	if err != nil {
		return SetDiffToken{}, err
	}
	id, err := parseUintArg(data, args[0])
	if err != nil {
		return SetDiffToken{}, err
	}
	level, ok := models.ParseDifficulty(args[1])
	if !ok {
		return SetDiffToken{}, fmt.Errorf("token %q: unknown difficulty %q", data, args[1])
	}
	return SetDiffToken{CourseID: id, Level: level}, nil
}

// DeleteCourseToken asks for or confirms a course deletion. The ask and
// confirm steps use distinct kinds so a stale confirmation cannot be
// replayed as a question.
type DeleteCourseToken struct {
	CourseID  uint
	Confirmed bool
}

func (t DeleteCourseToken) Encode() string {
	kind := kindDeleteCourse
	if t.Confirmed {
		kind = kindDeleteOK
	}
	return encodeToken(kind, strconv.FormatUint(uint64(t.CourseID), 10))
}

func parseDeleteCourse(data string, confirmed bool) (DeleteCourseToken, error) {
	kind := kindDeleteCourse
	if confirmed {
		kind = kindDeleteOK
	}
	args, err := tokenArgs(data, kind, 1)
	if err != nil {
		return DeleteCourseToken{}, err
	}
	id, err := parseUintArg(data, args[0])
	if err != nil {
		return DeleteCourseToken{}, err
	}
	return DeleteCourseToken{CourseID: id, Confirmed: confirmed}, nil
}

// RenameTypeToken starts the rename conversation for a course type.
type RenameTypeToken struct{ TypeID uint }

func (t RenameTypeToken) Encode() string {
	return encodeToken(kindRenameType, strconv.FormatUint(uint64(t.TypeID), 10))
}

func parseRenameType(data string) (RenameTypeToken, error) {
	args, err := tokenArgs(data, kindRenameType, 1)
	if err != nil {
		return RenameTypeToken{}, err
	}
	id, err := parseUintArg(data, args[0])
	if err != nil {
		return RenameTypeToken{}, err
	}
	return RenameTypeToken{TypeID: id}, nil
}

// DeleteTypeToken asks for or confirms a course type deletion.
type DeleteTypeToken struct {
	TypeID    uint
	Confirmed bool
}

func (t DeleteTypeToken) Encode() string {
	kind := kindDeleteType
	if t.Confirmed {
		kind = kindDeleteTypeOK
	}
	return encodeToken(kind, strconv.FormatUint(uint64(t.TypeID), 10))
}

func parseDeleteType(data string, confirmed bool) (DeleteTypeToken, error) {
	kind := kindDeleteType
	if confirmed {
		kind = kindDeleteTypeOK
	}
	args, err := tokenArgs(data, kind, 1)
	if err != nil {
		return DeleteTypeToken{}, err
	}
	id, err := parseUintArg(data, args[0])
	if err != nil {
		return DeleteTypeToken{}, err
	}
	return DeleteTypeToken{TypeID: id, Confirmed: confirmed}, nil
}

// studentListKind selects which slice of the student base to list.
type studentListKind string

const (
	listAll    studentListKind = "all"
	listPaid   studentListKind = "paid"
	listUnpaid studentListKind = "unpaid"
)

func validStudentListKind(s string) bool {
	switch studentListKind(s) {
	case listAll, listPaid, listUnpaid:
		return true
	}
	return false
}

// StudentListToken shows one page of a student list.
type StudentListToken struct {
	Kind studentListKind
	Page int
}

func (t StudentListToken) Encode() string {
	return encodeToken(kindStudentList, string(t.Kind), strconv.Itoa(t.Page))
}

func parseStudentList(data string) (StudentListToken, error) {
	args, err := tokenArgs(data, kindStudentList, 2)
	if err != nil {
		return StudentListToken{}, err
	}
	if !validStudentListKind(args[0]) {
		return StudentListToken{}, fmt.Errorf("token %q: unknown list kind %q", data, args[0])
	}
	page, err := strconv.Atoi(args[1])
	if err != nil || page < 0 {
		return StudentListToken{}, fmt.Errorf("token %q: bad page %q", data, args[1])
	}
	return StudentListToken{Kind: studentListKind(args[0]), Page: page}, nil
}

// StudentViewToken opens a student card. List kind and page are carried for
// the back button.
type StudentViewToken struct {
	UserID int64
	Kind   studentListKind
	Page   int
}

func (t StudentViewToken) Encode() string {
	return encodeToken(kindStudentView,
		strconv.FormatInt(t.UserID, 10),
		string(t.Kind),
		strconv.Itoa(t.Page))
}

func parseStudentView(data string) (StudentViewToken, error) {
	args, err := tokenArgs(data, kindStudentView, 3)
	if err != nil {
		return StudentViewToken{}, err
	}
	uid, err := parseInt64Arg(data, args[0])
	if err != nil {
		return StudentViewToken{}, err
	}
	if !validStudentListKind(args[1]) {
		return StudentViewToken{}, fmt.Errorf("token %q: unknown list kind %q", data, args[1])
	}
	page, err := strconv.Atoi(args[2])
	if err != nil || page < 0 {
		return StudentViewToken{}, fmt.Errorf("token %q: bad page %q", data, args[2])
	}
	return StudentViewToken{UserID: uid, Kind: studentListKind(args[1]), Page: page}, nil
}

// SetPaidToken toggles a student's payment flag from their card.
type SetPaidToken struct {
	UserID int64
	Paid   bool
	Kind   studentListKind
	Page   int
}

func (t SetPaidToken) Encode() string {
	paid := "0"
	if t.Paid {
		paid = "1"
	}
	return encodeToken(kindSetPaid,
		strconv.FormatInt(t.UserID, 10),
		paid,
		string(t.Kind),
		strconv.Itoa(t.Page))
}

func parseSetPaid(data string) (SetPaidToken, error) {
	args, err := tokenArgs(data, kindSetPaid, 4)
	if err != nil {
		return SetPaidToken{}, err
	}
	uid, err := parseInt64Arg(data, args[0])
	if err != nil {
		return SetPaidToken{}, err
	}
	var paid bool
	switch args[1] {
	case "0":
	case "1":
		paid = true
	default:
		return SetPaidToken{}, fmt.Errorf("token %q: bad paid flag %q", data, args[1])
	}
	if !validStudentListKind(args[2]) {
		return SetPaidToken{}, fmt.Errorf("token %q: unknown list kind %q", data, args[2])
	}
	page, err := strconv.Atoi(args[3])
	if err != nil || page < 0 {
		return SetPaidToken{}, fmt.Errorf("token %q: bad page %q", data, args[3])
	}
	return SetPaidToken{UserID: uid, Paid: paid, Kind: studentListKind(args[2]), Page: page}, nil
}

// RemoveAdminToken asks for or confirms revoking a user's admin rights.
type RemoveAdminToken struct {
	UserID    int64
	Confirmed bool
}

func (t RemoveAdminToken) Encode() string {
	kind := kindRemoveAsk
	if t.Confirmed {
		kind = kindRemoveOK
	}
	return encodeToken(kind, strconv.FormatInt(t.UserID, 10))
}

func parseRemoveAdmin(data string, confirmed bool) (RemoveAdminToken, error) {
	kind := kindRemoveAsk
	if confirmed {
		kind = kindRemoveOK
	}
	args, err := tokenArgs(data, kind, 1)
	if err != nil {
		return RemoveAdminToken{}, err
	}
	uid, err := parseInt64Arg(data, args[0])
	if err != nil {
		return RemoveAdminToken{}, err
	}
	return RemoveAdminToken{UserID: uid, Confirmed: confirmed}, nil
}

// tokenKind extracts the kind tag for dispatch.
func tokenKind(data string) string {
	if i := strings.Index(data, tokenSep); i >= 0 {
		return data[:i]
	}
	return data
}
