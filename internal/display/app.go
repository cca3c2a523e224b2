// Package display is the terminal UI. Each screen of the app is a Bubble
// Tea sub-model sitting on a navigation stack; the engine does the work
// and the screens only render its results.
package display

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/recipeit/internal/domain"
	"github.com/hammamikhairi/recipeit/internal/engine"
	"github.com/hammamikhairi/recipeit/internal/logger"
)

// screen is one page of the app. Screens are pointers and keep their own
// state across back-navigation; init runs every time the screen becomes
// visible.
type screen interface {
	init(a *App) tea.Cmd
	update(a *App, msg tea.Msg) tea.Cmd
	view(a *App) string
}

// resultMsg carries the outcome of work started for one screen visit.
type resultMsg struct {
	token uint64
	value any
	err   error
}

type alert struct {
	title string
	body  string
	then  func() tea.Cmd
}

// App is the Bubble Tea model for the whole program.
type App struct {
	eng *engine.Engine
	log *logger.Logger
	ctx context.Context

	nav     stack
	visit   *engine.Screen
	alert   *alert
	spinner spinner.Model
	help    help.Model

	width, height int
	quitting      bool
}

// New creates the UI over an engine.
func New(eng *engine.Engine, log *logger.Logger) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	h := help.New()
	h.Styles.ShortKey = dimStyle.Bold(true)
	h.Styles.ShortDesc = dimStyle

	return &App{
		eng:     eng,
		log:     log.Named("ui"),
		ctx:     context.Background(),
		spinner: sp,
		help:    h,
	}
}

// Run blocks until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.ctx = ctx
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()

	a.eng.Screens().Leave()
	a.eng.StopNarration()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init shows Home when a saved session exists, Start otherwise.
func (a *App) Init() tea.Cmd {
	root := RouteStart
	if a.eng.Restore() {
		root = RouteHome
	}
	return tea.Batch(a.spinner.Tick, a.reset(root, Params{}))
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.help.Width = msg.Width

	case tea.KeyMsg:
		if key.Matches(msg, keys.Kill) {
			a.quitting = true
			return a, tea.Quit
		}
		if a.alert != nil {
			return a, a.dismiss(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case resultMsg:
		if !a.eng.Screens().Current(msg.token) {
			a.log.Debug("dropping result for stale screen %d", msg.token)
			return a, nil
		}
	}

	top, ok := a.nav.top()
	if !ok {
		return a, nil
	}
	return a, top.screen.update(a, msg)
}

func (a *App) View() string {
	if a.quitting {
		return ""
	}
	top, ok := a.nav.top()
	if !ok {
		return ""
	}
	body := top.screen.view(a)
	if a.alert != nil {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", a.renderAlert())
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(body)
}

// ── Navigation ───────────────────────────────────────────────────

func (a *App) build(r Route, p Params) screen {
	switch r {
	case RouteLogin:
		return newLoginScreen()
	case RouteRegister:
		return newRegisterScreen()
	case RouteLoading:
		return &loadingScreen{}
	case RouteHome:
		return newHomeScreen()
	case RouteDetail:
		return newDetailScreen(p.ID)
	case RouteMap:
		return newMapScreen()
	default:
		return &startScreen{}
	}
}

// navigate pushes a new screen.
func (a *App) navigate(r Route, p Params) tea.Cmd {
	s := a.build(r, p)
	a.nav.push(entry{route: r, params: p, screen: s})
	return a.enter(r, s)
}

// reset replaces the whole history with a single screen.
func (a *App) reset(r Route, p Params) tea.Cmd {
	s := a.build(r, p)
	a.nav.reset(entry{route: r, params: p, screen: s})
	return a.enter(r, s)
}

// back returns to the previous screen. On the root screen it does nothing.
func (a *App) back() tea.Cmd {
	if _, ok := a.nav.pop(); !ok {
		return nil
	}
	top, _ := a.nav.top()
	return a.enter(top.route, top.screen)
}

// enter starts a new visit, which cancels work of the screen being left.
func (a *App) enter(r Route, s screen) tea.Cmd {
	a.eng.StopNarration()
	a.visit = a.eng.Screens().Enter(a.ctx)
	a.log.Debug("screen %s (visit %d, depth %d)", r, a.visit.Token, a.nav.depth())
	return s.init(a)
}

// async runs fn off the UI loop under the current visit's context.
func (a *App) async(fn func(ctx context.Context) (any, error)) tea.Cmd {
	v := a.visit
	return func() tea.Msg {
		val, err := fn(v.Ctx)
		return resultMsg{token: v.Token, value: val, err: err}
	}
}

// ── Alerts ───────────────────────────────────────────────────────

// showAlert blocks input until dismissed; then runs afterwards.
func (a *App) showAlert(title, body string, then func() tea.Cmd) {
	a.log.Debug("alert %q: %s", title, body)
	a.alert = &alert{title: title, body: body, then: then}
}

func (a *App) dismiss(msg tea.KeyMsg) tea.Cmd {
	if !key.Matches(msg, keys.Select, keys.Back) {
		return nil
	}
	al := a.alert
	a.alert = nil
	if al.then != nil {
		return al.then()
	}
	return nil
}

func (a *App) renderAlert() string {
	return alertStyle.Render(
		titleStyle.Render(a.alert.title) + "\n" +
			textStyle.Render(a.alert.body) + "\n" +
			dimStyle.Render("enter to dismiss"),
	)
}

// loadFailed alerts about a failed fetch and leaves the screen.
func (a *App) loadFailed(err error) {
	msg := "Something went wrong, please try again."
	switch {
	case errors.Is(err, domain.ErrMissingID):
		msg = "No recipe was selected."
	case errors.Is(err, domain.ErrNotFound):
		msg = "This recipe could not be found."
	case errors.Is(err, context.Canceled):
		return
	}
	a.log.Warn("load failed: %v", err)
	a.showAlert("Error", msg, a.back)
}

func (a *App) helpView(bindings ...key.Binding) string {
	return a.help.ShortHelpView(bindings)
}
