package entity

// Marks double as the wire player colors: X always opens.
const (
	MarkX = "X"
	MarkO = "O"

	WinnerDraw = "-"
)

// OppositeMark - toggles between the two player marks.
func OppositeMark(mark string) string {
	if mark == MarkX {
		return MarkO
	}
	return MarkX
}
