// Package review projects a recipe's stored reviews into display rows and
// holds the composer used to write a new one.
package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hammamikhairi/recipeit/internal/domain"
)

// StarGlyph is the glyph repeated once per rating point.
const StarGlyph = "★"

// Rating bounds accepted by the composer.
const (
	MinRating = 1
	MaxRating = 5
)

// Row is one rendered review.
type Row struct {
	Reviewer string
	Comment  string
	Avatar   string
	Rating   int
	Stars    string
}

// Render returns one row per review in input order. Ratings are rendered
// literally; a negative rating renders no stars.
func Render(reviews []domain.Review) []Row {
	rows := make([]Row, len(reviews))
	for i, r := range reviews {
		rows[i] = Row{
			Reviewer: r.Reviewer,
			Comment:  r.Comment,
			Avatar:   r.Avatar,
			Rating:   r.Rating,
			Stars:    Stars(r.Rating),
		}
	}
	return rows
}

// Stars returns exactly n star glyphs.
func Stars(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(StarGlyph, n)
}

// Aggregate returns the mean rating and number of reviews.
func Aggregate(reviews []domain.Review) (avg float64, count int) {
	if len(reviews) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews)), len(reviews)
}

// Apply appends a review to the recipe and refreshes its review count and
// aggregate rating. The stored count may exceed the number of listed
// reviews, so the new rating is folded into the stored mean.
func Apply(recipe *domain.Recipe, r domain.Review) {
	count := recipe.ReviewCount
	if count < len(recipe.Reviews) {
		count = len(recipe.Reviews)
	}
	if count == 0 {
		recipe.Rating = float64(r.Rating)
	} else {
		recipe.Rating = RoundRating((recipe.Rating*float64(count) + float64(r.Rating)) / float64(count+1))
	}
	recipe.Reviews = append(recipe.Reviews, r)
	recipe.ReviewCount = count + 1
}

// RoundRating rounds an average to one decimal, the precision shown in the
// feed ("4.6 (15+)").
func RoundRating(avg float64) float64 {
	return float64(int(avg*10+0.5)) / 10
}

// Composer is the pending review being typed in the reviews modal.
type Composer struct {
	Text   string
	Rating int
}

// NewComposer returns an empty composer with a five star default.
func NewComposer() *Composer {
	return &Composer{Rating: MaxRating}
}

// SetRating sets the draft rating, clamped to the accepted range.
func (c *Composer) SetRating(n int) {
	if n < MinRating {
		n = MinRating
	}
	if n > MaxRating {
		n = MaxRating
	}
	c.Rating = n
}

// Validate checks the draft without submitting it.
func (c *Composer) Validate() error {
	if strings.TrimSpace(c.Text) == "" {
		return domain.ErrEmptyReview
	}
	if c.Rating < MinRating || c.Rating > MaxRating {
		return domain.ErrInvalidRating
	}
	return nil
}

// Submit writes the draft through w and resets the composer on success.
func (c *Composer) Submit(ctx context.Context, w domain.ReviewWriter, recipeID, reviewer string) (*domain.Recipe, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if reviewer == "" {
		reviewer = "Anonymous"
	}

	r := domain.Review{
		Reviewer:  reviewer,
		Comment:   strings.TrimSpace(c.Text),
		Rating:    c.Rating,
		CreatedAt: time.Now(),
	}
	updated, err := w.AddReview(ctx, recipeID, r)
	if err != nil {
		return nil, fmt.Errorf("submitting review: %w", err)
	}

	c.Text = ""
	c.Rating = MaxRating
	return updated, nil
}
