package bot

// studentsPerPage is how many students fit on one list page.
const studentsPerPage = 10

// paginate slices items for a 1-based page and reports the total page
// count. Out-of-range pages are clamped so a stale pager button still
// lands on a valid page.
func paginate[T any](items []T, page, perPage int) ([]T, int, int) {
	if perPage < 1 {
		perPage = 1
	}
	totalPages := (len(items) + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * perPage
	end := start + perPage
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], page, totalPages
}
