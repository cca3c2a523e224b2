package display

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hammamikhairi/recipeit/internal/auth"
	"github.com/hammamikhairi/recipeit/internal/domain"
)

// ── Start ────────────────────────────────────────────────────────

type startScreen struct{}

func (s *startScreen) init(a *App) tea.Cmd { return nil }

func (s *startScreen) update(a *App, msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(km, keys.Select):
		return a.navigate(RouteLogin, Params{})
	case key.Matches(km, keys.Register), km.String() == "s":
		return a.navigate(RouteRegister, Params{})
	case key.Matches(km, keys.Quit, keys.Back):
		a.quitting = true
		return tea.Quit
	}
	return nil
}

func (s *startScreen) view(a *App) string {
	return RenderBanner(a.width-4) + "\n" +
		titleStyle.Render("Let's Get Cooking") + "\n" +
		subtitleStyle.Render("Find the best recipe for cooking") + "\n\n" +
		a.helpView(
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "sign in")),
			key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sign up")),
			keys.Quit,
		)
}

// ── Login ────────────────────────────────────────────────────────

type loginScreen struct {
	form form
	busy bool
}

func newLoginScreen() *loginScreen {
	return &loginScreen{form: newForm(
		field{label: "Email", hint: "you@example.com"},
		field{label: "Password", hint: "your password", secret: true},
	)}
}

func (s *loginScreen) init(a *App) tea.Cmd {
	s.busy = false
	return s.form.focusField(s.form.focus)
}

func (s *loginScreen) update(a *App, msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case resultMsg:
		s.busy = false
		if msg.err != nil {
			a.showAlert("Login Failed", loginMessage(msg.err), nil)
			return nil
		}
		return a.reset(RouteLoading, Params{})

	case tea.KeyMsg:
		if s.busy {
			return nil
		}
		switch {
		case key.Matches(msg, keys.Back):
			return a.back()
		case key.Matches(msg, keys.Register):
			return a.navigate(RouteRegister, Params{})
		case key.Matches(msg, keys.Next):
			return s.form.next()
		case key.Matches(msg, keys.Prev):
			return s.form.prev()
		case key.Matches(msg, keys.Select):
			if !s.form.last() {
				return s.form.next()
			}
			return s.submit(a)
		}
	}
	return s.form.update(msg)
}

func (s *loginScreen) submit(a *App) tea.Cmd {
	creds := domain.Credentials{Email: s.form.value(0), Password: s.form.raw(1)}
	if err := auth.ValidateCredentials(creds); err != nil {
		a.showAlert("Login Failed", loginMessage(err), nil)
		return nil
	}
	s.busy = true
	return a.async(func(ctx context.Context) (any, error) {
		return a.eng.Login(ctx, creds)
	})
}

func loginMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, domain.ErrMissingField):
		return "Please enter your email and password."
	}
	return err.Error()
}

func (s *loginScreen) view(a *App) string {
	out := titleStyle.Render("Welcome Back!") + "\n" +
		subtitleStyle.Render("Sign in to continue") + "\n\n" +
		s.form.view()
	if s.busy {
		out += a.spinner.View() + dimStyle.Render(" signing in…") + "\n\n"
	}
	return out + a.helpView(keys.Next, keys.Select, keys.Register, keys.Back)
}

// ── Register ─────────────────────────────────────────────────────

type registerScreen struct {
	form form
	busy bool
}

func newRegisterScreen() *registerScreen {
	return &registerScreen{form: newForm(
		field{label: "Username", hint: "how others see you"},
		field{label: "Email", hint: "you@example.com"},
		field{label: "Password", hint: "at least 6 characters", secret: true},
		field{label: "Confirm Password", hint: "type it again", secret: true},
	)}
}

func (s *registerScreen) init(a *App) tea.Cmd {
	s.busy = false
	return s.form.focusField(s.form.focus)
}

func (s *registerScreen) update(a *App, msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case resultMsg:
		s.busy = false
		if msg.err != nil {
			a.showAlert("Registration Failed", msg.err.Error(), nil)
			return nil
		}
		a.showAlert("Success", "Account created successfully!", func() tea.Cmd {
			return a.reset(RouteLogin, Params{})
		})
		return nil

	case tea.KeyMsg:
		if s.busy {
			return nil
		}
		switch {
		case key.Matches(msg, keys.Back):
			return a.back()
		case key.Matches(msg, keys.Next):
			return s.form.next()
		case key.Matches(msg, keys.Prev):
			return s.form.prev()
		case key.Matches(msg, keys.Select):
			if !s.form.last() {
				return s.form.next()
			}
			return s.submit(a)
		}
	}
	return s.form.update(msg)
}

// submit checks the form locally first; a password mismatch never reaches
// the provider.
func (s *registerScreen) submit(a *App) tea.Cmd {
	reg := domain.Registration{
		Username:        s.form.value(0),
		Email:           s.form.value(1),
		Password:        s.form.raw(2),
		ConfirmPassword: s.form.raw(3),
	}
	if err := auth.ValidateRegistration(reg); err != nil {
		if errors.Is(err, domain.ErrPasswordMismatch) {
			a.showAlert("Error", "Passwords do not match", nil)
		} else {
			a.showAlert("Registration Failed", registerMessage(err), nil)
		}
		return nil
	}
	s.busy = true
	return a.async(func(ctx context.Context) (any, error) {
		return a.eng.Register(ctx, reg)
	})
}

// registerMessage words local validation failures; provider errors are
// shown as the provider wrote them.
func registerMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingField):
		return "Please fill in every field."
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Please enter a valid email address."
	case errors.Is(err, domain.ErrWeakPassword):
		return "Password should be at least 6 characters."
	}
	return err.Error()
}

func (s *registerScreen) view(a *App) string {
	out := titleStyle.Render("Create Account") + "\n" +
		subtitleStyle.Render("Join and start cooking") + "\n\n" +
		s.form.view()
	if s.busy {
		out += a.spinner.View() + dimStyle.Render(" creating account…") + "\n\n"
	}
	return out + a.helpView(keys.Next, keys.Select, keys.Back)
}

// ── Loading ──────────────────────────────────────────────────────

// loadingDelay is how long the splash after sign-in stays up.
var loadingDelay = 1500 * time.Millisecond

type loadingDone struct{ token uint64 }

type loadingScreen struct{}

func (s *loadingScreen) init(a *App) tea.Cmd {
	token := a.visit.Token
	return tea.Tick(loadingDelay, func(time.Time) tea.Msg { return loadingDone{token: token} })
}

func (s *loadingScreen) update(a *App, msg tea.Msg) tea.Cmd {
	if m, ok := msg.(loadingDone); ok && a.eng.Screens().Current(m.token) {
		return a.reset(RouteHome, Params{})
	}
	return nil
}

func (s *loadingScreen) view(a *App) string {
	name := "chef"
	if sess := a.eng.Session(); sess != nil && sess.Account.Username != "" {
		name = sess.Account.Username
	}
	return RenderBanner(a.width-4) + "\n" +
		a.spinner.View() + textStyle.Render(" Getting the kitchen ready, "+name+"…")
}
