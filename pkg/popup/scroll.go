// Package popup derives the visible window and scrollbar geometry for
// the candidate list and renders it as fixed-width aligned lines.
package popup

// Scroll computes the first visible row for the current selection.
// The selected row is kept within margin rows of the window edges,
// except near the list ends where the window flushes to 0 or to
// total-rows. prev is the previous scroll offset; keeping it inside
// the clamp makes scrolling sticky instead of recentering on every
// movement.
func Scroll(prev, index, total, rows, margin int) int {
	off := max(min(margin, rows/2), 0)
	corr := 0
	if margin == rows/2 {
		corr = rows%2 - 1
	}
	low := max(0, index+off+1-rows)
	mid := min(index-off-corr, prev)
	high := max(0, total-rows)
	return min(high, max(low, mid))
}

// Bar computes the scrollbar thumb geometry for a scrolled window.
// ok is false when the whole list fits and no bar should be drawn.
// The thumb never touches the top or bottom edge unless the list is
// actually at that edge.
func Bar(scroll, total, rows int) (offset, length int, ok bool) {
	if total <= rows {
		return 0, 0, false
	}
	length = (rows*rows + total - 1) / total
	offset = min(rows-length-1, rows*scroll/total)
	if scroll != 0 {
		offset = max(1, offset)
	}
	if scroll+rows < total {
		offset = min(rows-length-2, offset)
	}
	return offset, length, true
}
