package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/hammamikhairi/recipeit/internal/domain"
	"github.com/hammamikhairi/recipeit/internal/logger"
	"github.com/hammamikhairi/recipeit/internal/review"
	"github.com/hammamikhairi/recipeit/internal/seed"
)

//go:embed schema.sql
var schemaSQL string

// Compile-time interface checks.
var (
	_ domain.RecipeSource      = (*SQLiteStore)(nil)
	_ domain.SupermarketSource = (*SQLiteStore)(nil)
	_ domain.ReviewWriter      = (*SQLiteStore)(nil)
	_ domain.AccountStore      = (*SQLiteStore)(nil)
)

// SQLiteStore keeps the catalogue in a local SQLite database file.
type SQLiteStore struct {
	db  *sql.DB
	log *logger.Logger
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the embedded schema.
func OpenSQLite(path string, log *logger.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases consistent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	log.Debug("sqlite store ready at %s", path)
	return &SQLiteStore{db: db, log: log}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Empty reports whether no recipes have been stored yet.
func (s *SQLiteStore) Empty(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&n); err != nil {
		return false, fmt.Errorf("counting recipes: %w", err)
	}
	return n == 0, nil
}

// Load upserts every recipe, review and supermarket of a catalogue.
func (s *SQLiteStore) Load(ctx context.Context, cat *seed.Catalogue) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, r := range cat.Recipes {
		ingredients, _ := json.Marshal(r.Ingredients)
		steps, _ := json.Marshal(r.Steps)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO recipes (id, name, difficulty, rating, review_count, description, image, category, duration, author, ingredients, steps)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name=excluded.name, difficulty=excluded.difficulty, rating=excluded.rating,
				review_count=excluded.review_count, description=excluded.description, image=excluded.image,
				category=excluded.category, duration=excluded.duration, author=excluded.author,
				ingredients=excluded.ingredients, steps=excluded.steps`,
			r.ID, r.Name, r.Difficulty.String(), r.Rating, r.ReviewCount, r.Description, r.Image,
			r.Category, r.Duration, r.Author, string(ingredients), string(steps))
		if err != nil {
			return fmt.Errorf("storing recipe %s: %w", r.ID, err)
		}
		for _, rv := range r.Reviews {
			if rv.ID == "" {
				rv.ID = uuid.NewString()
			}
			_, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO reviews (id, recipe_id, reviewer, comment, rating, avatar, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				rv.ID, r.ID, rv.Reviewer, rv.Comment, rv.Rating, rv.Avatar, nullTime(rv.CreatedAt))
			if err != nil {
				return fmt.Errorf("storing review for %s: %w", r.ID, err)
			}
		}
	}
	for _, m := range cat.Supermarkets {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO supermarkets (id, name, address, latitude, longitude, image)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name=excluded.name, address=excluded.address,
				latitude=excluded.latitude, longitude=excluded.longitude, image=excluded.image`,
			m.ID, m.Name, m.Address, m.Latitude, m.Longitude, m.Image)
		if err != nil {
			return fmt.Errorf("storing supermarket %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.log.Info("loaded %d recipes and %d supermarkets into sqlite", len(cat.Recipes), len(cat.Supermarkets))
	return nil
}

const recipeColumns = `id, name, difficulty, rating, review_count, description, image, category, duration, author, ingredients, steps`

// List returns all recipes in insertion order, reviews included.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recipeColumns+` FROM recipes ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}
	defer rows.Close()

	var out []domain.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}

	for i := range out {
		if out[i].Reviews, err = s.reviews(ctx, s.db, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Get returns a recipe by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	return s.get(ctx, s.db, id)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *SQLiteStore) get(ctx context.Context, q querier, id string) (*domain.Recipe, error) {
	row := q.QueryRowContext(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id)
	r, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		s.log.Debug("recipe not found: %s", id)
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if r.Reviews, err = s.reviews(ctx, q, id); err != nil {
		return nil, err
	}
	return r, nil
}

// Search matches name, description and category case-insensitively. The
// query is a plain substring; LIKE wildcards in it match literally.
func (s *SQLiteStore) Search(ctx context.Context, query string) ([]domain.RecipeSummary, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	rows, err := s.db.QueryContext(ctx, `SELECT `+recipeColumns+` FROM recipes
		WHERE instr(lower(name), ?) > 0 OR instr(lower(description), ?) > 0 OR instr(lower(category), ?) > 0
		ORDER BY position`, q, q, q)
	if err != nil {
		return nil, fmt.Errorf("searching recipes: %w", err)
	}
	defer rows.Close()

	var out []domain.RecipeSummary
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r.Summary())
	}
	return out, rows.Err()
}

// ListSupermarkets returns every store location in insertion order.
func (s *SQLiteStore) ListSupermarkets(ctx context.Context) ([]domain.Supermarket, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, address, latitude, longitude, image FROM supermarkets ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("listing supermarkets: %w", err)
	}
	defer rows.Close()

	var out []domain.Supermarket
	for rows.Next() {
		var m domain.Supermarket
		if err := rows.Scan(&m.ID, &m.Name, &m.Address, &m.Latitude, &m.Longitude, &m.Image); err != nil {
			return nil, fmt.Errorf("scanning supermarket: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// AddReview appends a review and refreshes the recipe's count and rating
// in one transaction.
func (s *SQLiteStore) AddReview(ctx context.Context, recipeID string, r domain.Review) (*domain.Recipe, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	rec, err := s.get(ctx, tx, recipeID)
	if err != nil {
		return nil, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	review.Apply(rec, r)

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO reviews (id, recipe_id, reviewer, comment, rating, avatar, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, recipeID, r.Reviewer, r.Comment, r.Rating, r.Avatar, r.CreatedAt); err != nil {
		return nil, fmt.Errorf("inserting review: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE recipes SET review_count = ?, rating = ? WHERE id = ?`,
		rec.ReviewCount, rec.Rating, recipeID); err != nil {
		return nil, fmt.Errorf("updating recipe stats: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.log.Info("review added to %s by %s (%d stars)", recipeID, r.Reviewer, r.Rating)
	return rec, nil
}

// CreateAccount stores a new account. Emails are unique, case-insensitively.
func (s *SQLiteStore) CreateAccount(ctx context.Context, account domain.Account, passwordHash string) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO accounts (id, email, username, password_hash) VALUES (?, ?, ?, ?)`,
		account.ID, account.Email, account.Username, passwordHash)
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) && sqlErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("account %s: %w", account.Email, domain.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("creating account: %w", err)
	}
	s.log.Info("account created: %s", account.Email)
	return nil
}

// FindAccount returns the account and password hash for an email.
func (s *SQLiteStore) FindAccount(ctx context.Context, email string) (*domain.Account, string, error) {
	var (
		acc  domain.Account
		hash string
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, email, username, password_hash FROM accounts WHERE email = ?`, email).
		Scan(&acc.ID, &acc.Email, &acc.Username, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", domain.ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("finding account: %w", err)
	}
	return &acc, hash, nil
}

func (s *SQLiteStore) reviews(ctx context.Context, q querier, recipeID string) ([]domain.Review, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, reviewer, comment, rating, avatar, created_at
		FROM reviews WHERE recipe_id = ? ORDER BY seq`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var (
			r       domain.Review
			created sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.Reviewer, &r.Comment, &r.Rating, &r.Avatar, &created); err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}
		r.CreatedAt = created.Time
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecipe(sc scanner) (*domain.Recipe, error) {
	var (
		r                  domain.Recipe
		difficulty         string
		ingredients, steps string
	)
	err := sc.Scan(&r.ID, &r.Name, &difficulty, &r.Rating, &r.ReviewCount, &r.Description,
		&r.Image, &r.Category, &r.Duration, &r.Author, &ingredients, &steps)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning recipe: %w", err)
	}
	r.Difficulty = domain.ParseDifficulty(difficulty)
	if err := json.Unmarshal([]byte(ingredients), &r.Ingredients); err != nil {
		return nil, fmt.Errorf("recipe %s ingredients: %w", r.ID, domain.ErrInvalidRecord)
	}
	if err := json.Unmarshal([]byte(steps), &r.Steps); err != nil {
		return nil, fmt.Errorf("recipe %s steps: %w", r.ID, domain.ErrInvalidRecord)
	}
	return &r, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
