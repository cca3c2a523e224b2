package rtdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hammamikhairi/recipeit/internal/domain"
	"github.com/hammamikhairi/recipeit/internal/logger"
	"github.com/hammamikhairi/recipeit/internal/review"
)

// RecipeRecord is a recipe node as stored under recipes/{id}. The review
// count lives in "reviews" and the individual reviews under "reviewers".
type RecipeRecord struct {
	Name        string          `json:"name"`
	Author      string          `json:"author,omitempty"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Difficulty  string          `json:"difficulty,omitempty"`
	Duration    string          `json:"duration,omitempty"`
	Image       string          `json:"image,omitempty"`
	Rating      Number          `json:"rating"`
	Reviews     Number          `json:"reviews"`
	Ingredients json.RawMessage `json:"ingredients,omitempty"`
	Steps       json.RawMessage `json:"steps,omitempty"`
	Reviewers   json.RawMessage `json:"reviewers,omitempty"`
}

// ReviewRecord is a single entry under recipes/{id}/reviewers.
type ReviewRecord struct {
	Reviewer  string `json:"reviewer"`
	Comment   string `json:"comment"`
	Rating    Number `json:"rating"`
	Avatar    string `json:"avatar,omitempty"`
	CreatedAt int64  `json:"createdAt,omitempty"`
}

// SupermarketRecord is a node under supermarkets/{id}.
type SupermarketRecord struct {
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
	Latitude  Number `json:"latitude"`
	Longitude Number `json:"longitude"`
	Image     string `json:"image,omitempty"`
}

// StatsPatch is the body of the PATCH that follows a new review.
type StatsPatch struct {
	Reviews int     `json:"reviews"`
	Rating  float64 `json:"rating"`
}

// PushResult is the database's reply to a POST: the generated child key.
type PushResult struct {
	Name string `json:"name"`
}

// Number accepts a JSON number or a numeric string. Anything else decodes
// to zero.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "+")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		*n = 0
		return nil
	}
	*n = Number(f)
	return nil
}

// DecodeRecipe validates a raw recipe node and converts it to the domain
// type. A record without a name is rejected with ErrInvalidRecord. Review
// ratings outside 1..5 are clamped and logged.
func DecodeRecipe(id string, data []byte, log *logger.Logger) (*domain.Recipe, error) {
	var rec RecipeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("recipe %s: %w: %v", id, domain.ErrInvalidRecord, err)
	}
	if strings.TrimSpace(rec.Name) == "" {
		return nil, fmt.Errorf("recipe %s: %w: missing name", id, domain.ErrInvalidRecord)
	}

	r := &domain.Recipe{
		ID:          id,
		Name:        rec.Name,
		Author:      rec.Author,
		Category:    rec.Category,
		Description: rec.Description,
		Difficulty:  domain.ParseDifficulty(rec.Difficulty),
		Duration:    rec.Duration,
		Image:       rec.Image,
		Rating:      clampFloat(float64(rec.Rating), 0, review.MaxRating),
		ReviewCount: int(math.Max(0, float64(rec.Reviews))),
	}
	if !strings.EqualFold(strings.TrimSpace(rec.Difficulty), r.Difficulty.String()) && rec.Difficulty != "" {
		log.Warn("recipe %s: unknown difficulty %q, using %s", id, rec.Difficulty, r.Difficulty)
	}

	var err error
	if r.Ingredients, err = decodeStrings(rec.Ingredients); err != nil {
		return nil, fmt.Errorf("recipe %s ingredients: %w: %v", id, domain.ErrInvalidRecord, err)
	}
	if r.Steps, err = decodeStrings(rec.Steps); err != nil {
		return nil, fmt.Errorf("recipe %s steps: %w: %v", id, domain.ErrInvalidRecord, err)
	}
	if r.Reviews, err = decodeReviews(id, rec.Reviewers, log); err != nil {
		return nil, err
	}
	if r.ReviewCount < len(r.Reviews) {
		r.ReviewCount = len(r.Reviews)
	}
	return r, nil
}

// EncodeRecipe converts a recipe to its stored form. Reviews are written
// as an object keyed by review ID, in order.
func EncodeRecipe(r *domain.Recipe) ([]byte, error) {
	rec := RecipeRecord{
		Name:        r.Name,
		Author:      r.Author,
		Category:    r.Category,
		Description: r.Description,
		Difficulty:  r.Difficulty.String(),
		Duration:    r.Duration,
		Image:       r.Image,
		Rating:      Number(r.Rating),
		Reviews:     Number(r.ReviewCount),
	}
	var err error
	if rec.Ingredients, err = json.Marshal(nonNil(r.Ingredients)); err != nil {
		return nil, err
	}
	if rec.Steps, err = json.Marshal(nonNil(r.Steps)); err != nil {
		return nil, err
	}
	if len(r.Reviews) > 0 {
		entries := make([]Entry, 0, len(r.Reviews))
		for _, rv := range r.Reviews {
			raw, err := json.Marshal(EncodeReview(rv))
			if err != nil {
				return nil, err
			}
			entries = append(entries, Entry{Key: rv.ID, Raw: raw})
		}
		rec.Reviewers = EncodeObject(entries)
	}
	return json.Marshal(rec)
}

// EncodeReview converts a review to its stored form.
func EncodeReview(r domain.Review) ReviewRecord {
	rec := ReviewRecord{
		Reviewer: r.Reviewer,
		Comment:  r.Comment,
		Rating:   Number(r.Rating),
		Avatar:   r.Avatar,
	}
	if !r.CreatedAt.IsZero() {
		rec.CreatedAt = r.CreatedAt.UnixMilli()
	}
	return rec
}

// DecodeReview converts a stored review to the domain type. Ratings are
// clamped into 1..5.
func DecodeReview(id string, rec ReviewRecord) domain.Review {
	r := domain.Review{
		ID:       id,
		Reviewer: rec.Reviewer,
		Comment:  rec.Comment,
		Rating:   int(math.Round(clampFloat(float64(rec.Rating), review.MinRating, review.MaxRating))),
		Avatar:   rec.Avatar,
	}
	if rec.CreatedAt > 0 {
		r.CreatedAt = time.UnixMilli(rec.CreatedAt)
	}
	return r
}

// DecodeSupermarket converts a stored supermarket node.
func DecodeSupermarket(id string, data []byte) (*domain.Supermarket, error) {
	var rec SupermarketRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("supermarket %s: %w: %v", id, domain.ErrInvalidRecord, err)
	}
	if strings.TrimSpace(rec.Name) == "" {
		return nil, fmt.Errorf("supermarket %s: %w: missing name", id, domain.ErrInvalidRecord)
	}
	return &domain.Supermarket{
		ID:        id,
		Name:      rec.Name,
		Address:   rec.Address,
		Latitude:  float64(rec.Latitude),
		Longitude: float64(rec.Longitude),
		Image:     rec.Image,
	}, nil
}

// EncodeSupermarket converts a supermarket to its stored form.
func EncodeSupermarket(m domain.Supermarket) SupermarketRecord {
	return SupermarketRecord{
		Name:      m.Name,
		Address:   m.Address,
		Latitude:  Number(m.Latitude),
		Longitude: Number(m.Longitude),
		Image:     m.Image,
	}
}

func decodeReviews(recipeID string, raw json.RawMessage, log *logger.Logger) ([]domain.Review, error) {
	entries, err := Children(raw)
	if err != nil {
		return nil, fmt.Errorf("recipe %s reviewers: %w: %v", recipeID, domain.ErrInvalidRecord, err)
	}
	out := make([]domain.Review, 0, len(entries))
	for _, e := range entries {
		var rec ReviewRecord
		if err := json.Unmarshal(e.Raw, &rec); err != nil {
			log.Warn("recipe %s: skipping malformed review %s: %v", recipeID, e.Key, err)
			continue
		}
		if rec.Rating < review.MinRating || rec.Rating > review.MaxRating {
			log.Warn("recipe %s: review %s rating %v out of range, clamped", recipeID, e.Key, float64(rec.Rating))
		}
		out = append(out, DecodeReview(e.Key, rec))
	}
	return out, nil
}

// decodeStrings reads a list stored either as an array or as a keyed object.
func decodeStrings(raw json.RawMessage) ([]string, error) {
	entries, err := Children(raw)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		var s string
		if err := json.Unmarshal(e.Raw, &s); err != nil {
			return nil, fmt.Errorf("entry %s is not a string", e.Key)
		}
		out = append(out, s)
	}
	return out, nil
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
