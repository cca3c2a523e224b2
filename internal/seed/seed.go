// Package seed loads sample recipes and supermarkets from YAML. The
// embedded default file carries the demo catalogue used by the in-memory
// backend, the local emulator and tests.
package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/recipeit/internal/domain"
)

//go:embed recipes.yaml
var defaultYAML []byte

// Catalogue is the decoded content of a seed file.
type Catalogue struct {
	Recipes      []domain.Recipe
	Supermarkets []domain.Supermarket
}

type fileRecipe struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Author      string       `yaml:"author"`
	Difficulty  string       `yaml:"difficulty"`
	Rating      float64      `yaml:"rating"`
	Reviews     int          `yaml:"reviews"`
	Category    string       `yaml:"category"`
	Duration    string       `yaml:"duration"`
	Image       string       `yaml:"image"`
	Description string       `yaml:"description"`
	Ingredients []string     `yaml:"ingredients"`
	Steps       []string     `yaml:"steps"`
	Reviewers   []fileReview `yaml:"reviewers"`
}

type fileReview struct {
	Reviewer string `yaml:"reviewer"`
	Comment  string `yaml:"comment"`
	Rating   int    `yaml:"rating"`
	Avatar   string `yaml:"avatar"`
}

type fileMarket struct {
	ID        string  `yaml:"id"`
	Name      string  `yaml:"name"`
	Address   string  `yaml:"address"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Image     string  `yaml:"image"`
}

type file struct {
	Recipes      []fileRecipe `yaml:"recipes"`
	Supermarkets []fileMarket `yaml:"supermarkets"`
}

// Default returns the embedded demo catalogue.
func Default() (*Catalogue, error) {
	return Load(bytes.NewReader(defaultYAML))
}

// LoadFile reads a seed file from disk.
func LoadFile(path string) (*Catalogue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening seed file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a seed document. Recipes without an id or name are rejected.
func Load(r io.Reader) (*Catalogue, error) {
	var doc file
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding seed: %w", err)
	}

	cat := &Catalogue{}
	seen := make(map[string]bool, len(doc.Recipes))
	for i, fr := range doc.Recipes {
		if strings.TrimSpace(fr.ID) == "" || strings.TrimSpace(fr.Name) == "" {
			return nil, fmt.Errorf("seed recipe #%d: %w: id and name are required", i+1, domain.ErrInvalidRecord)
		}
		if seen[fr.ID] {
			return nil, fmt.Errorf("seed recipe %q: %w", fr.ID, domain.ErrAlreadyExists)
		}
		seen[fr.ID] = true
		cat.Recipes = append(cat.Recipes, fr.toDomain())
	}
	for _, fm := range doc.Supermarkets {
		cat.Supermarkets = append(cat.Supermarkets, domain.Supermarket{
			ID:        fm.ID,
			Name:      fm.Name,
			Address:   fm.Address,
			Latitude:  fm.Latitude,
			Longitude: fm.Longitude,
			Image:     fm.Image,
		})
	}
	return cat, nil
}

func (fr fileRecipe) toDomain() domain.Recipe {
	r := domain.Recipe{
		ID:          fr.ID,
		Name:        fr.Name,
		Author:      fr.Author,
		Difficulty:  domain.ParseDifficulty(fr.Difficulty),
		Rating:      fr.Rating,
		ReviewCount: fr.Reviews,
		Category:    fr.Category,
		Duration:    fr.Duration,
		Image:       fr.Image,
		Description: strings.TrimSpace(fr.Description),
		Ingredients: fr.Ingredients,
		Steps:       fr.Steps,
	}
	for i, rv := range fr.Reviewers {
		r.Reviews = append(r.Reviews, domain.Review{
			ID:       fmt.Sprintf("%s-r%d", fr.ID, i+1),
			Reviewer: rv.Reviewer,
			Comment:  rv.Comment,
			Rating:   rv.Rating,
			Avatar:   rv.Avatar,
		})
	}
	if r.ReviewCount < len(r.Reviews) {
		r.ReviewCount = len(r.Reviews)
	}
	return r
}
