package question

import "image"

// Label is an OCR token matching the question-number pattern.
type Label struct {
	QNum int             `json:"qnum"` // Parsed question number
	Text string          `json:"text"` // Matched token text, e.g. "Q12."
	Box  image.Rectangle `json:"box"`  // Token bounds in page pixels
}

// Region is the full-width band of a page attributed to one question.
type Region struct {
	QNum int `json:"qnum"`
	X1   int `json:"x1"`
	Y1   int `json:"y1"`
	X2   int `json:"x2"`
	Y2   int `json:"y2"`
}

// Rect returns the region as an image rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// Height is Y2 - Y1.
func (r Region) Height() int {
	return r.Y2 - r.Y1
}

// Block pairs a label with the region computed for it.
type Block struct {
	Label  Label
	Region Region
}

// Entry is one indexed question on a page.
type Entry struct {
	QNum      int    `json:"qnum"`
	Label     Label  `json:"label"`
	Region    Region `json:"region"`
	ImagePath string `json:"image_path"`
	CropPath  string `json:"crop_path"`
}

// PageResult is the outcome of indexing a single page. Err is non-nil when
// the page failed; Entries may still hold whatever was produced before the
// failure.
type PageResult struct {
	Page      int
	ImagePath string
	Entries   []Entry
	Err       error
}

// OK reports whether the page was processed without error.
func (r PageResult) OK() bool {
	return r.Err == nil
}

// QNums lists the question numbers of the page's entries in order.
func (r PageResult) QNums() []int {
	out := make([]int, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, e.QNum)
	}
	return out
}
