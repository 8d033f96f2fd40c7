package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lingvobot/internal/models"
)

// Keyboard builders are pure: they compose markup from already-loaded data
// and never touch the database.

func (b *Bot) mainMenuKeyboard(lang string, admin bool) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(b.tr.Text("buttons.courses", lang)),
			tgbotapi.NewKeyboardButton(b.tr.Text("buttons.about_us", lang)),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(b.tr.Text("buttons.contact_teacher", lang)),
			tgbotapi.NewKeyboardButton(b.tr.Text("buttons.settings", lang)),
		),
	}
	if admin {
		rows = append(rows,
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(b.tr.Text("course.add", lang)),
				tgbotapi.NewKeyboardButton(b.tr.Text("course_type.add", lang)),
			),
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(b.tr.Text("admin.course_management", lang)),
				tgbotapi.NewKeyboardButton(b.tr.Text("student.management", lang)),
			),
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(b.tr.Text("admin.admin_management", lang)),
			),
		)
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func (b *Bot) cancelKeyboard(lang string) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(b.tr.Text("buttons.cancel", lang)),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func (b *Bot) practiceEntryKeyboard(lang string) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(b.tr.Text("course.practice_finish_button", lang)),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(b.tr.Text("buttons.cancel", lang)),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// courseTypesKeyboard lists active course types, one per row. manage routes
// the selection into the admin management surface.
func courseTypesKeyboard(types []models.CourseType, manage bool) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(types))
	for _, ct := range types {
		var data string
		if manage {
			data = ManageTypeToken{TypeID: ct.ID}.Encode()
		} else {
			data = ViewTypeToken{TypeID: ct.ID}.Encode()
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(ct.Name, data),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// wizardTypeKeyboard is the course type picker of the creation wizard.
func wizardTypeKeyboard(types []models.CourseType) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(types))
	for _, ct := range types {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(ct.Name, TypePickToken{TypeID: ct.ID}.Encode()),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// wizardDifficultyKeyboard is the difficulty picker of the creation wizard.
func (b *Bot) wizardDifficultyKeyboard(lang string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(models.Levels()))
	for _, level := range models.Levels() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				b.tr.Text("course.difficulty."+string(level), lang),
				DiffPickToken{Level: level}.Encode(),
			),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// difficultyFilterKeyboard offers the four levels plus "all" for browsing a
// type's courses.
func (b *Bot) difficultyFilterKeyboard(lang string, typeID uint, manage bool) tgbotapi.InlineKeyboardMarkup {
	encode := func(diff *models.DifficultyLevel) string {
		if manage {
			return ManageListToken{TypeID: typeID, Difficulty: diff}.Encode()
		}
		return CourseListToken{TypeID: typeID, Difficulty: diff}.Encode()
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(models.Levels())+2)
	for _, level := range models.Levels() {
		level := level
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				b.tr.Text("course.difficulty."+string(level), lang),
				encode(&level),
			),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(b.tr.Text("course.difficulty.all", lang), encode(nil)),
	))
	back := encodeToken(kindCourseTypes)
	if manage {
		back = encodeToken(kindManageTypes)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(b.tr.Text("buttons.back_to_types", lang), back),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// courseListKeyboard lists courses in order-index order, one per row.
func (b *Bot) courseListKeyboard(lang string, courses []models.Course, typeID uint, diff *models.DifficultyLevel, manage bool) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(courses)+1)
	for _, c := range courses {
		label := fmt.Sprintf("%d. %s", c.OrderIndex, c.Title)
		var data string
		if manage {
			data = ManageCourseToken{CourseID: c.ID, Difficulty: diff}.Encode()
		} else {
			data = CourseOpenToken{CourseID: c.ID, Difficulty: diff}.Encode()
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, data),
		))
	}
	var back string
	if manage {
		back = ManageTypeToken{TypeID: typeID}.Encode()
	} else {
		back = ViewTypeToken{TypeID: typeID}.Encode()
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(b.tr.Text("buttons.back", lang), back),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// courseCardKeyboard offers the media attachments of one course.
func (b *Bot) courseCardKeyboard(lang string, c models.Course, diff *models.DifficultyLevel) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				b.tr.Text("course.watch_video", lang),
				MediaToken{Kind: mediaVideo, CourseID: c.ID, Difficulty: diff}.Encode(),
			),
			tgbotapi.NewInlineKeyboardButtonData(
				b.tr.Text("course.listen_voice", lang),
				MediaToken{Kind: mediaVoice, CourseID: c.ID, Difficulty: diff}.Encode(),
			),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				b.tr.Text("course.text_content", lang),
				MediaToken{Kind: mediaText, CourseID: c.ID, Difficulty: diff}.Encode(),
			),
			tgbotapi.NewInlineKeyboardButtonData(
				b.tr.Text("course.practice_images", lang),
				PracticeToken{CourseID: c.ID, Page: 1, Difficulty: diff}.Encode(),
			),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				b.tr.Text("buttons.back", lang),
				CourseListToken{TypeID: c.CourseTypeID, Difficulty: diff}.Encode(),
			),
		),
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// manageTypeKeyboard is the admin menu of one course type.
func (b *Bot) manageTypeKeyboard(lang string, typeID uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				b.tr.Text("course_type.courses_button", lang),
				ManageListToken{TypeID: typeID}.Encode(),
			),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				b.tr.Text("course_type.rename", lang),
				RenameTypeToken{TypeID: typeID}.Encode(),
			),
			tgbotapi.NewInlineKeyboardButtonData(
				b.tr.Text("course_type.delete", lang),
				DeleteTypeToken{TypeID: typeID}.Encode(),
			),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.tr.Text("buttons.back", lang), encodeToken(kindManageTypes)),
		),
	)
}

// manageCourseKeyboard offers per-field edits and deletion of one course.
func (b *Bot) manageCourseKeyboard(lang string, c models.Course, diff *models.DifficultyLevel) tgbotapi.InlineKeyboardMarkup {
	edit := func(field courseField) string {
		return EditFieldToken{Field: field, CourseID: c.ID}.Encode()
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.tr.Text("course.edit_title", lang), edit(fieldTitle)),
			tgbotapi.NewInlineKeyboardButtonData(b.tr.Text("course.edit_description", lang), edit(fieldDescription)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.tr.Text("course.edit_banner", lang), edit(fieldBanner)),
			tgbotapi.NewInlineKeyboardButtonData(b.tr.Text("course.edit_video", lang), edit(fieldVideo)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.tr.Text("course.edit_voice", lang), edit(fieldVoice)),
			tgbotapi.NewInlineKeyboardButtonData(b.tr.Text("course.edit_text", lang), edit(fieldText)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.tr.Text("course.change_difficulty", lang), EditDiffToken{CourseID: c.ID}.Encode()),
			tgbotapi.NewInlineKeyboardButtonData(b.tr.Text("course.change_order", lang), edit(fieldOrder)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				b.tr.Text("admin.delete_course", lang),
				DeleteCourseToken{CourseID: c.ID}.Encode(),
			),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				b.tr.Text("buttons.back", lang),
				ManageListToken{TypeID: c.CourseTypeID, Difficulty: diff}.Encode(),
			),
		),
	)
}

// editDifficultyKeyboard picks a new level for an existing course.
func (b *Bot) editDifficultyKeyboard(lang string, courseID uint) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(models.Levels())+1)
	for _, level := range models.Levels() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				b.tr.Text("course.difficulty."+string(level), lang),
				SetDiffToken{CourseID: courseID, Level: level}.Encode(),
			),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(
			b.tr.Text("buttons.back", lang),
			ManageCourseToken{CourseID: courseID}.Encode(),
		),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// confirmKeyboard is a yes/back pair for destructive actions.
func (b *Bot) confirmKeyboard(lang, yesData, backData string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.tr.Text("buttons.confirm", lang), yesData),
			tgbotapi.NewInlineKeyboardButtonData(b.tr.Text("buttons.back", lang), backData),
		),
	)
}

// studentMenuKeyboard is the root of the student management surface. Button
// labels carry the size of each slice.
func (b *Bot) studentMenuKeyboard(lang string, total, paid, unpaid int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf(b.tr.Text("student.all_students", lang), total),
				StudentListToken{Kind: listAll, Page: 1}.Encode(),
			),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf(b.tr.Text("student.paid_students", lang), paid),
				StudentListToken{Kind: listPaid, Page: 1}.Encode(),
			),
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf(b.tr.Text("student.unpaid_students", lang), unpaid),
				StudentListToken{Kind: listUnpaid, Page: 1}.Encode(),
			),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.tr.Text("student.enter_id", lang), encodeToken(kindStudentEnter)),
		),
	)
}

// studentListKeyboard renders one page of students with pager controls.
func (b *Bot) studentListKeyboard(lang string, students []models.Student, kind studentListKind, page, totalPages int) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(students)+2)
	for _, s := range students {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				s.FullName(),
				StudentViewToken{UserID: s.UserID, Kind: kind, Page: page}.Encode(),
			),
		))
	}
	var pager []tgbotapi.InlineKeyboardButton
	if page > 1 {
		pager = append(pager, tgbotapi.NewInlineKeyboardButtonData(
			"⬅️", StudentListToken{Kind: kind, Page: page - 1}.Encode()))
	}
	pager = append(pager, tgbotapi.NewInlineKeyboardButtonData(
		fmt.Sprintf(b.tr.Text("student.page_info", lang), page, totalPages),
		encodeToken(kindNoop)))
	if page < totalPages {
		pager = append(pager, tgbotapi.NewInlineKeyboardButtonData(
			"➡️", StudentListToken{Kind: kind, Page: page + 1}.Encode()))
	}
	rows = append(rows, pager)
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(b.tr.Text("buttons.back", lang), encodeToken(kindStudentMenu)),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// studentCardKeyboard toggles the payment flag and returns to the list.
func (b *Bot) studentCardKeyboard(lang string, s models.Student, kind studentListKind, page int) tgbotapi.InlineKeyboardMarkup {
	toggleKey := "student.change_to_paid"
	if s.IsPaid {
		toggleKey = "student.change_to_unpaid"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				b.tr.Text(toggleKey, lang),
				SetPaidToken{UserID: s.UserID, Paid: !s.IsPaid, Kind: kind, Page: page}.Encode(),
			),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				b.tr.Text("student.back_to_list", lang),
				StudentListToken{Kind: kind, Page: page}.Encode(),
			),
		),
	)
}

// adminMenuKeyboard is the root of the admin management surface.
func (b *Bot) adminMenuKeyboard(lang string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.tr.Text("admin.admin_list", lang), encodeToken(kindAdminList)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.tr.Text("admin.add_admin", lang), encodeToken(kindAdminAdd)),
			tgbotapi.NewInlineKeyboardButtonData(b.tr.Text("admin.remove_admin", lang), encodeToken(kindAdminRemove)),
		),
	)
}

// adminRemoveKeyboard lists removable admins. The caller excludes the
// acting admin; removal of one's own rights is rejected again at
// confirmation time.
func (b *Bot) adminRemoveKeyboard(lang string, admins []models.Student) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(admins)+1)
	for _, a := range admins {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				a.FullName(),
				RemoveAdminToken{UserID: a.UserID}.Encode(),
			),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(b.tr.Text("buttons.back", lang), encodeToken(kindAdminMenu)),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// languageKeyboard picks the interface language.
func languageKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🇷🇺 Русский", LangToken{Code: "ru"}.Encode()),
			tgbotapi.NewInlineKeyboardButtonData("🇺🇿 O'zbekcha", LangToken{Code: "uz"}.Encode()),
		),
	)
}
