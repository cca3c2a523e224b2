// Package emulator serves the realtime database REST surface and the
// identity sign-up/sign-in calls over local stores, so the client can run
// end to end without the hosted backend.
package emulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/hammamikhairi/recipeit/internal/auth"
	"github.com/hammamikhairi/recipeit/internal/domain"
	"github.com/hammamikhairi/recipeit/internal/logger"
	"github.com/hammamikhairi/recipeit/internal/rtdb"
	"github.com/hammamikhairi/recipeit/internal/storage"
)

// Option configures the Server.
type Option func(*Server)

// WithRequireAuth rejects database calls whose auth token was not issued
// by this server's sign-in endpoint.
func WithRequireAuth() Option {
	return func(s *Server) { s.requireAuth = true }
}

// WithAuthOptions passes options to the embedded local auth provider.
func WithAuthOptions(opts ...auth.LocalOption) Option {
	return func(s *Server) { s.authOpts = append(s.authOpts, opts...) }
}

// Server is the emulator. It is an http.Handler.
type Server struct {
	store       *storage.MemoryStore
	provider    *auth.LocalProvider
	authOpts    []auth.LocalOption
	requireAuth bool
	router      *mux.Router
	log         *logger.Logger

	mu       sync.RWMutex
	sessions map[string]domain.Account
}

// New creates an emulator over a memory store.
func New(store *storage.MemoryStore, log *logger.Logger, opts ...Option) *Server {
	s := &Server{
		store:    store,
		log:      log,
		sessions: make(map[string]domain.Account),
	}
	for _, o := range opts {
		o(s)
	}
	s.provider = auth.NewLocalProvider(store, log, s.authOpts...)
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	id := r.PathPrefix("/v1").Subrouter()
	id.HandleFunc("/accounts:signUp", s.handleSignUp).Methods("POST")
	id.HandleFunc("/accounts:signInWithPassword", s.handleSignIn).Methods("POST")

	db := r.NewRoute().Subrouter()
	db.Use(s.authMiddleware)
	db.HandleFunc("/recipes.json", s.handleListRecipes).Methods("GET")
	db.HandleFunc("/recipes.json", s.handlePutRecipes).Methods("PUT")
	db.HandleFunc("/recipes/{id}.json", s.handleGetRecipe).Methods("GET")
	db.HandleFunc("/recipes/{id}.json", s.handlePatchRecipe).Methods("PATCH")
	db.HandleFunc("/recipes/{id}/reviewers.json", s.handlePushReview).Methods("POST")
	db.HandleFunc("/supermarkets.json", s.handleListSupermarkets).Methods("GET")
	db.HandleFunc("/supermarkets.json", s.handlePutSupermarkets).Methods("PUT")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The hosted database answers unknown paths with null.
		writeRaw(w, http.StatusOK, []byte("null"))
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("emulator listening on %s", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("emulator shutting down")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("emulator: %w", err)
	}
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.requireAuth {
			s.mu.RLock()
			_, ok := s.sessions[r.URL.Query().Get("auth")]
			s.mu.RUnlock()
			if !ok {
				s.log.Debug("emulator: rejected %s %s", r.Method, r.URL.Path)
				writeError(w, http.StatusUnauthorized, "Permission denied")
				return
			}
		}
		s.log.Debug("emulator: %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// ── Database handlers ────────────────────────────────────────────

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(recipes) == 0 {
		writeRaw(w, http.StatusOK, []byte("null"))
		return
	}

	entries := make([]rtdb.Entry, 0, len(recipes))
	for i := range recipes {
		raw, err := rtdb.EncodeRecipe(&recipes[i])
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		entries = append(entries, rtdb.Entry{Key: recipes[i].ID, Raw: raw})
	}
	writeRaw(w, http.StatusOK, rtdb.EncodeObject(entries))
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, domain.ErrNotFound) {
		writeRaw(w, http.StatusOK, []byte("null"))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	raw, err := rtdb.EncodeRecipe(rec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeRaw(w, http.StatusOK, raw)
}

func (s *Server) handlePutRecipes(w http.ResponseWriter, r *http.Request) {
	entries, ok := readChildren(w, r)
	if !ok {
		return
	}
	recipes := make([]domain.Recipe, 0, len(entries))
	for _, e := range entries {
		rec, err := rtdb.DecodeRecipe(e.Key, e.Raw, s.log)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		recipes = append(recipes, *rec)
	}
	s.store.ReplaceRecipes(recipes)
	writeRaw(w, http.StatusOK, []byte(`{}`))
}

func (s *Server) handlePutSupermarkets(w http.ResponseWriter, r *http.Request) {
	entries, ok := readChildren(w, r)
	if !ok {
		return
	}
	markets := make([]domain.Supermarket, 0, len(entries))
	for _, e := range entries {
		m, err := rtdb.DecodeSupermarket(e.Key, e.Raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		markets = append(markets, *m)
	}
	s.store.ReplaceSupermarkets(markets)
	writeRaw(w, http.StatusOK, []byte(`{}`))
}

func (s *Server) handlePatchRecipe(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid data; couldn't parse JSON object.")
		return
	}
	for k := range fields {
		if k != "reviews" && k != "rating" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("emulator does not patch %q", k))
			return
		}
	}

	cur, err := s.store.Get(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	count, rating := cur.ReviewCount, cur.Rating
	if raw, ok := fields["reviews"]; ok {
		if err := json.Unmarshal(raw, &count); err != nil {
			writeError(w, http.StatusBadRequest, "reviews must be an integer")
			return
		}
	}
	if raw, ok := fields["rating"]; ok {
		if err := json.Unmarshal(raw, &rating); err != nil {
			writeError(w, http.StatusBadRequest, "rating must be a number")
			return
		}
	}
	if err := s.store.UpdateStats(r.Context(), id, count, rating); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rtdb.StatsPatch{Reviews: count, Rating: rating})
}

func (s *Server) handlePushReview(w http.ResponseWriter, r *http.Request) {
	var rec rtdb.ReviewRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid data; couldn't parse JSON object.")
		return
	}
	key, err := s.store.AppendReview(r.Context(), mux.Vars(r)["id"], rtdb.DecodeReview("", rec))
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rtdb.PushResult{Name: key})
}

func (s *Server) handleListSupermarkets(w http.ResponseWriter, r *http.Request) {
	markets, err := s.store.ListSupermarkets(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(markets) == 0 {
		writeRaw(w, http.StatusOK, []byte("null"))
		return
	}
	entries := make([]rtdb.Entry, 0, len(markets))
	for _, m := range markets {
		raw, err := json.Marshal(rtdb.EncodeSupermarket(m))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		entries = append(entries, rtdb.Entry{Key: m.ID, Raw: raw})
	}
	writeRaw(w, http.StatusOK, rtdb.EncodeObject(entries))
}

// ── Identity handlers ────────────────────────────────────────────

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req auth.SignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeIdentityError(w, "INVALID_JSON")
		return
	}
	_, err := s.provider.Register(r.Context(), domain.Registration{
		Username:        req.DisplayName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.Password,
	})
	if errors.Is(err, domain.ErrInvalidCredentials) {
		writeIdentityError(w, "INVALID_EMAIL")
		return
	}
	if err != nil {
		writeIdentityError(w, identityCode(err, req))
		return
	}
	s.signIn(w, r, req)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req auth.SignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeIdentityError(w, "INVALID_JSON")
		return
	}
	s.signIn(w, r, req)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request, req auth.SignRequest) {
	sess, err := s.provider.Login(r.Context(), domain.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		writeIdentityError(w, identityCode(err, req))
		return
	}

	s.mu.Lock()
	s.sessions[sess.Token] = sess.Account
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, auth.SignResponse{
		IDToken:      sess.Token,
		Email:        sess.Account.Email,
		RefreshToken: sess.RefreshToken,
		ExpiresIn:    fmt.Sprintf("%d", int(time.Until(sess.ExpiresAt).Seconds())),
		LocalID:      sess.Account.ID,
		DisplayName:  sess.Account.Username,
	})
}

// identityCode maps domain errors onto the hosted service's error codes.
func identityCode(err error, req auth.SignRequest) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		return "EMAIL_EXISTS"
	case errors.Is(err, domain.ErrWeakPassword):
		return "WEAK_PASSWORD : Password should be at least 6 characters"
	case errors.Is(err, domain.ErrMissingField) && req.Email == "":
		return "MISSING_EMAIL"
	case errors.Is(err, domain.ErrMissingField):
		return "MISSING_PASSWORD"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "INVALID_LOGIN_CREDENTIALS"
	default:
		return err.Error()
	}
}

// ── Helpers ──────────────────────────────────────────────────────

func readChildren(w http.ResponseWriter, r *http.Request) ([]rtdb.Entry, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	entries, err := rtdb.Children(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid data; couldn't parse JSON object.")
		return nil, false
	}
	return entries, true
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeIdentityError(w http.ResponseWriter, code string) {
	var env auth.ErrorResponse
	env.Error.Code = http.StatusBadRequest
	env.Error.Message = code
	writeJSON(w, http.StatusBadRequest, env)
}
