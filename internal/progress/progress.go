// Package progress turns the horizontal position of the method-step
// carousel into a cooking progress percentage.
package progress

import "math"

// OnScroll converts a horizontal scroll offset into a 0-100 completion
// percentage. When the content fits in a single viewport there is nothing
// to scroll and the result is 0.
func OnScroll(offsetX, contentWidth, viewportWidth float64) float64 {
	maxOffset := contentWidth - viewportWidth
	if !(maxOffset > 0) || math.IsInf(maxOffset, 0) || math.IsNaN(offsetX) {
		return 0
	}
	pct := offsetX / maxOffset * 100
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

// Pager is a horizontally paged step carousel: one page per step, each
// page exactly one viewport wide.
type Pager struct {
	steps     int
	pageWidth float64
	offset    float64
}

// NewPager creates a pager positioned on the first step.
func NewPager(steps int, pageWidth float64) *Pager {
	if steps < 0 {
		steps = 0
	}
	if pageWidth <= 0 {
		pageWidth = 1
	}
	return &Pager{steps: steps, pageWidth: pageWidth}
}

// Steps returns the number of pages.
func (p *Pager) Steps() int { return p.steps }

// Page returns the 0-based index of the step currently in view.
func (p *Pager) Page() int {
	if p.steps == 0 {
		return 0
	}
	return int(math.Round(p.offset / p.pageWidth))
}

// Offset returns the current scroll offset.
func (p *Pager) Offset() float64 { return p.offset }

// ContentWidth returns the total width of all pages.
func (p *Pager) ContentWidth() float64 { return float64(p.steps) * p.pageWidth }

// ViewportWidth returns the width of one page.
func (p *Pager) ViewportWidth() float64 { return p.pageWidth }

// ScrollTo moves to an arbitrary offset, clamped to the scrollable range.
func (p *Pager) ScrollTo(offset float64) {
	maxOffset := p.ContentWidth() - p.pageWidth
	if maxOffset < 0 {
		maxOffset = 0
	}
	p.offset = math.Max(0, math.Min(offset, maxOffset))
}

// Next snaps to the following step. Returns false on the last step.
func (p *Pager) Next() bool {
	if p.Page() >= p.steps-1 {
		return false
	}
	p.ScrollTo(float64(p.Page()+1) * p.pageWidth)
	return true
}

// Prev snaps to the preceding step. Returns false on the first step.
func (p *Pager) Prev() bool {
	if p.Page() == 0 {
		return false
	}
	p.ScrollTo(float64(p.Page()-1) * p.pageWidth)
	return true
}

// Resize changes the page width and keeps the current step in view.
func (p *Pager) Resize(pageWidth float64) {
	if pageWidth <= 0 {
		return
	}
	page := p.Page()
	p.pageWidth = pageWidth
	p.ScrollTo(float64(page) * pageWidth)
}

// Percent returns the completion percentage for the current offset.
func (p *Pager) Percent() float64 {
	return OnScroll(p.offset, p.ContentWidth(), p.pageWidth)
}
