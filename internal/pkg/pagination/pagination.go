// Package pagination computes page counts and the window of page links to show.
package pagination

// DefaultMaxVisible is the number of page links shown at once.
const DefaultMaxVisible = 5

// TotalPages returns ceil(total / perPage). A non-positive perPage yields 0.
func TotalPages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// VisiblePages returns the ordered page numbers to render around current.
// The window has min(maxVisible, total) entries, never starts below 1 and
// never ends past total; near the end it is shifted left to end at total.
func VisiblePages(current, total, maxVisible int) []int {
	if maxVisible <= 0 {
		maxVisible = DefaultMaxVisible
	}
	if total <= 0 {
		return []int{}
	}

	if total <= maxVisible {
		return pageRange(1, total)
	}

	left := max(1, current-maxVisible/2)
	right := min(total, left+maxVisible-1)

	if right == total {
		return pageRange(total-maxVisible+1, total)
	}
	return pageRange(left, right)
}

func pageRange(from, to int) []int {
	pages := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		pages = append(pages, i)
	}
	return pages
}
