package ledger

// DefaultPageSize is the number of records revealed per page.
const DefaultPageSize = 15

// Window reveals a growing prefix of a sequence.
type Window struct {
	PageSize int
	Revealed int
}

// NewWindow returns a window showing one page. Non-positive sizes use DefaultPageSize.
func NewWindow(pageSize int) Window {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Window{PageSize: pageSize, Revealed: pageSize}
}

// Visible returns the revealed prefix of records.
func Visible[T any](w Window, records []T) []T {
	if w.Revealed >= len(records) {
		return records
	}
	if w.Revealed <= 0 {
		return records[:0]
	}
	return records[:w.Revealed]
}

// HasMore reports whether records beyond the window exist.
func (w Window) HasMore(total int) bool {
	return w.Revealed < total
}

// LoadMore reveals one more page without passing total. It reports whether
// the window grew.
func (w *Window) LoadMore(total int) bool {
	if !w.HasMore(total) {
		return false
	}
	w.Revealed = min(w.Revealed+w.PageSize, total)
	return true
}

// Reset returns the window to its first page.
func (w *Window) Reset() {
	w.Revealed = w.PageSize
}
