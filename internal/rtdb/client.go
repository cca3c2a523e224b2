// Package rtdb is a REST client for a Firebase-style realtime database.
// Every node is addressed as {databaseURL}/{path}.json and read or written
// as plain JSON.
package rtdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hammamikhairi/recipeit/internal/domain"
	"github.com/hammamikhairi/recipeit/internal/logger"
	"github.com/hammamikhairi/recipeit/internal/review"
)

// Compile-time interface checks.
var (
	_ domain.RecipeSource      = (*Client)(nil)
	_ domain.SupermarketSource = (*Client)(nil)
	_ domain.ReviewWriter      = (*Client)(nil)
)

// APIError is a non-2xx reply from the database.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("rtdb: %d %s", e.Status, e.Message)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// WithHTTPTimeout sets the HTTP client timeout.
func WithHTTPTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.Timeout = d }
}

// WithToken sets a function that returns the auth token sent with every
// request. An empty token is omitted.
func WithToken(fn func() string) ClientOption {
	return func(c *Client) { c.token = fn }
}

// Client reads and writes the recipe catalogue.
type Client struct {
	baseURL string
	token   func() string
	http    *http.Client
	log     *logger.Logger
}

// NewClient creates a client for the database at baseURL
// (e.g. "https://<project>-default-rtdb.firebaseio.com").
func NewClient(baseURL string, log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   func() string { return "" },
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FetchRecipe reads recipes/{id}. A missing node yields ErrNotFound.
func (c *Client) FetchRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrMissingID
	}
	body, err := c.do(ctx, http.MethodGet, "recipes/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	if isNull(body) {
		c.log.Debug("rtdb: recipe not found: %s", id)
		return nil, domain.ErrNotFound
	}
	return DecodeRecipe(id, body, c.log)
}

// FetchAllRecipes reads the recipes node and returns its children in
// document order. Invalid records are skipped with a warning.
func (c *Client) FetchAllRecipes(ctx context.Context) ([]domain.Recipe, error) {
	body, err := c.do(ctx, http.MethodGet, "recipes", nil)
	if err != nil {
		return nil, err
	}
	entries, err := Children(body)
	if err != nil {
		return nil, fmt.Errorf("rtdb: recipes: %w", err)
	}

	out := make([]domain.Recipe, 0, len(entries))
	for _, e := range entries {
		r, err := DecodeRecipe(e.Key, e.Raw, c.log)
		if err != nil {
			c.log.Warn("rtdb: skipping record: %v", err)
			continue
		}
		out = append(out, *r)
	}
	c.log.Debug("rtdb: fetched %d recipes (%d records)", len(out), len(entries))
	return out, nil
}

// List implements domain.RecipeSource.
func (c *Client) List(ctx context.Context) ([]domain.Recipe, error) {
	return c.FetchAllRecipes(ctx)
}

// Get implements domain.RecipeSource.
func (c *Client) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	return c.FetchRecipe(ctx, id)
}

// Search fetches every recipe and filters locally; the REST surface has
// no substring query.
func (c *Client) Search(ctx context.Context, query string) ([]domain.RecipeSummary, error) {
	all, err := c.FetchAllRecipes(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	var out []domain.RecipeSummary
	for i := range all {
		if all[i].Matches(q) {
			out = append(out, all[i].Summary())
		}
	}
	return out, nil
}

// ListSupermarkets reads the supermarkets node in document order.
func (c *Client) ListSupermarkets(ctx context.Context) ([]domain.Supermarket, error) {
	body, err := c.do(ctx, http.MethodGet, "supermarkets", nil)
	if err != nil {
		return nil, err
	}
	entries, err := Children(body)
	if err != nil {
		return nil, fmt.Errorf("rtdb: supermarkets: %w", err)
	}

	out := make([]domain.Supermarket, 0, len(entries))
	for _, e := range entries {
		m, err := DecodeSupermarket(e.Key, e.Raw)
		if err != nil {
			c.log.Warn("rtdb: skipping record: %v", err)
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

// AddReview pushes the review under recipes/{id}/reviewers, then patches
// the recipe's review count and rating. The two writes are not atomic.
func (c *Client) AddReview(ctx context.Context, recipeID string, r domain.Review) (*domain.Recipe, error) {
	rec, err := c.FetchRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	body, err := c.do(ctx, http.MethodPost, "recipes/"+url.PathEscape(recipeID)+"/reviewers", EncodeReview(r))
	if err != nil {
		return nil, fmt.Errorf("pushing review: %w", err)
	}
	var push PushResult
	if err := json.Unmarshal(body, &push); err != nil {
		return nil, fmt.Errorf("rtdb: unmarshal push result: %w", err)
	}
	r.ID = push.Name

	review.Apply(rec, r)
	patch := StatsPatch{Reviews: rec.ReviewCount, Rating: rec.Rating}
	if _, err := c.do(ctx, http.MethodPatch, "recipes/"+url.PathEscape(recipeID), patch); err != nil {
		return nil, fmt.Errorf("updating recipe stats: %w", err)
	}

	c.log.Info("rtdb: review %s added to %s (%.1f over %d)", r.ID, recipeID, rec.Rating, rec.ReviewCount)
	return rec, nil
}

// Upload writes a whole catalogue, replacing the recipes and supermarkets
// nodes. Child order follows the slices.
func (c *Client) Upload(ctx context.Context, recipes []domain.Recipe, markets []domain.Supermarket) error {
	entries := make([]Entry, 0, len(recipes))
	for i := range recipes {
		raw, err := EncodeRecipe(&recipes[i])
		if err != nil {
			return fmt.Errorf("rtdb: encode recipe %s: %w", recipes[i].ID, err)
		}
		entries = append(entries, Entry{Key: recipes[i].ID, Raw: raw})
	}
	if _, err := c.do(ctx, http.MethodPut, "recipes", json.RawMessage(EncodeObject(entries))); err != nil {
		return fmt.Errorf("uploading recipes: %w", err)
	}

	entries = entries[:0]
	for _, m := range markets {
		raw, err := json.Marshal(EncodeSupermarket(m))
		if err != nil {
			return fmt.Errorf("rtdb: encode supermarket %s: %w", m.ID, err)
		}
		entries = append(entries, Entry{Key: m.ID, Raw: raw})
	}
	if _, err := c.do(ctx, http.MethodPut, "supermarkets", json.RawMessage(EncodeObject(entries))); err != nil {
		return fmt.Errorf("uploading supermarkets: %w", err)
	}

	c.log.Info("rtdb: uploaded %d recipes and %d supermarkets", len(recipes), len(markets))
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		var data []byte
		switch p := payload.(type) {
		case json.RawMessage:
			data = p
		default:
			var err error
			if data, err = json.Marshal(payload); err != nil {
				return nil, fmt.Errorf("rtdb: marshal payload: %w", err)
			}
		}
		reader = bytes.NewReader(data)
	}

	endpoint := c.endpoint(path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("rtdb: create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("rtdb: %s %s", method, path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rtdb: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rtdb: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(body, resp.Status)}
	}
	return body, nil
}

func (c *Client) endpoint(path string) string {
	u := c.baseURL + "/" + strings.Trim(path, "/") + ".json"
	if tok := c.token(); tok != "" {
		u += "?auth=" + url.QueryEscape(tok)
	}
	return u
}

// errorMessage extracts {"error": "..."} from a reply body.
func errorMessage(body []byte, fallback string) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return fallback
}

// IsPermissionDenied reports whether err is a 401 or 403 from the database.
func IsPermissionDenied(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden)
}
