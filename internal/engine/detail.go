package engine

import (
	"github.com/hammamikhairi/recipeit/internal/checklist"
	"github.com/hammamikhairi/recipeit/internal/domain"
	"github.com/hammamikhairi/recipeit/internal/progress"
	"github.com/hammamikhairi/recipeit/internal/review"
)

// Detail is the state of one open recipe screen: the checklist, the step
// carousel and the reviews modal. It is re-created on every load.
type Detail struct {
	Recipe    *domain.Recipe
	Checklist []checklist.Entry
	Pager     *progress.Pager
	Reviews   []review.Row
	Composer  *review.Composer
}

func newDetail(r *domain.Recipe, pageWidth float64) *Detail {
	return &Detail{
		Recipe:    r,
		Checklist: checklist.Initialize(r.Ingredients),
		Pager:     progress.NewPager(len(r.Steps), pageWidth),
		Reviews:   review.Render(r.Reviews),
		Composer:  review.NewComposer(),
	}
}

// ToggleIngredient flips one checklist entry by ID.
func (d *Detail) ToggleIngredient(id string) {
	d.Checklist = checklist.Toggle(d.Checklist, id)
}

// Checked returns how many ingredients are ticked off.
func (d *Detail) Checked() (checked, total int) {
	return checklist.Count(d.Checklist)
}

// Progress is the step carousel's scroll percentage.
func (d *Detail) Progress() float64 {
	return d.Pager.Percent()
}

// CurrentStep returns the step on the visible page.
func (d *Detail) CurrentStep() (string, bool) {
	i := d.Pager.Page()
	if i < 0 || i >= len(d.Recipe.Steps) {
		return "", false
	}
	return d.Recipe.Steps[i], true
}

// refresh replaces the recipe after a review was written. The checklist
// and carousel position are kept.
func (d *Detail) refresh(r *domain.Recipe) {
	d.Recipe = r
	d.Reviews = review.Render(r.Reviews)
}
