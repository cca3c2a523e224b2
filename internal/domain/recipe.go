// Package domain defines the core types and interfaces for the recipe client.
// All other packages depend on domain; domain depends on nothing.
package domain

import (
	"strings"
	"time"
)

// Recipe is a named dish record as stored by the backend.
type Recipe struct {
	ID          string
	Name        string
	Difficulty  Difficulty
	Rating      float64
	ReviewCount int
	Description string
	Ingredients []string
	Steps       []string
	Image       string
	Category    string
	Duration    string
	Author      string
	Reviews     []Review
}

// Summary returns the lightweight listing view of the recipe.
func (r *Recipe) Summary() RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Name:        r.Name,
		Difficulty:  r.Difficulty,
		Rating:      r.Rating,
		ReviewCount: r.ReviewCount,
		Category:    r.Category,
		Duration:    r.Duration,
		Description: r.Description,
	}
}

// Matches reports whether the name, description or category contains the
// query. The query must already be lower-cased; an empty query matches.
func (r *Recipe) Matches(query string) bool {
	if query == "" {
		return true
	}
	for _, field := range []string{r.Name, r.Description, r.Category} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// RecipeSummary is a lightweight view of a recipe for the home feed.
type RecipeSummary struct {
	ID          string
	Name        string
	Difficulty  Difficulty
	Rating      float64
	ReviewCount int
	Category    string
	Duration    string
	Description string
}

// Difficulty grades how hard a recipe is.
type Difficulty int

const (
	DifficultyEasy Difficulty = iota
	DifficultyMedium
	DifficultyHard
)

// String returns the display name of the difficulty.
func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "Easy"
	case DifficultyMedium:
		return "Medium"
	case DifficultyHard:
		return "Hard"
	default:
		return "Medium"
	}
}

// ParseDifficulty maps a stored difficulty label to a Difficulty.
// Matching is case-insensitive; unknown labels fall back to Medium.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy
	case "hard":
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// Review is an immutable user review with a star rating.
type Review struct {
	ID        string
	Reviewer  string
	Comment   string
	Rating    int
	Avatar    string
	CreatedAt time.Time
}

// Supermarket is a store location shown on the map screen.
type Supermarket struct {
	ID        string
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
	Image     string
}
