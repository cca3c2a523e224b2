package domain

import "context"

// RecipeSource provides recipes. Implementations can be the realtime
// database REST client, the in-memory store, or SQLite.
type RecipeSource interface {
	// List returns every recipe in insertion order.
	List(ctx context.Context) ([]Recipe, error)
	Get(ctx context.Context, id string) (*Recipe, error)
	Search(ctx context.Context, query string) ([]RecipeSummary, error)
}

// SupermarketSource provides the store locations for the map screen.
type SupermarketSource interface {
	ListSupermarkets(ctx context.Context) ([]Supermarket, error)
}

// ReviewWriter appends a review to a recipe. Implementations must also
// bump the recipe's review count and recompute its aggregate rating.
type ReviewWriter interface {
	AddReview(ctx context.Context, recipeID string, review Review) (*Recipe, error)
}

// AccountStore persists local accounts with hashed passwords.
type AccountStore interface {
	CreateAccount(ctx context.Context, account Account, passwordHash string) error
	FindAccount(ctx context.Context, email string) (*Account, string, error)
}

// AuthProvider registers and signs in users.
type AuthProvider interface {
	Register(ctx context.Context, reg Registration) (*Account, error)
	Login(ctx context.Context, creds Credentials) (*Session, error)
}

// Narrator reads text aloud. The no-op implementation is used when
// speech is disabled.
type Narrator interface {
	Speak(ctx context.Context, text string) error
	Stop()
}
