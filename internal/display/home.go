package display

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hammamikhairi/recipeit/internal/domain"
	"github.com/hammamikhairi/recipeit/internal/engine"
)

type searchResults struct {
	query string
	items []domain.RecipeSummary
}

type homeScreen struct {
	feed    *engine.Feed
	showAll bool
	loading bool

	search    textinput.Model
	searching bool
	query     string
	results   []domain.RecipeSummary

	cursor int
}

func newHomeScreen() *homeScreen {
	in := textinput.New()
	in.Placeholder = "Search any recipes"
	in.Prompt = "⌕ "
	in.PromptStyle = dimStyle
	in.CharLimit = 64
	return &homeScreen{search: in}
}

// init refetches on every visit so ratings changed on the detail screen
// show up when coming back.
func (s *homeScreen) init(a *App) tea.Cmd {
	cmds := []tea.Cmd{s.fetch(a)}
	if s.query != "" {
		cmds = append(cmds, s.runSearch(a, s.query))
	}
	return tea.Batch(cmds...)
}

func (s *homeScreen) fetch(a *App) tea.Cmd {
	s.loading = true
	showAll := s.showAll
	return a.async(func(ctx context.Context) (any, error) {
		return a.eng.Home(ctx, showAll)
	})
}

func (s *homeScreen) runSearch(a *App, q string) tea.Cmd {
	return a.async(func(ctx context.Context) (any, error) {
		items, err := a.eng.Search(ctx, q)
		return searchResults{query: q, items: items}, err
	})
}

// items is what the cursor moves over: search results while a query is
// active, otherwise the feed followed by the suggestions.
func (s *homeScreen) items() []domain.RecipeSummary {
	if s.query != "" {
		return s.results
	}
	if s.feed == nil {
		return nil
	}
	out := make([]domain.RecipeSummary, 0, len(s.feed.Recipes)+len(s.feed.Suggestions))
	out = append(out, s.feed.Recipes...)
	return append(out, s.feed.Suggestions...)
}

func (s *homeScreen) clampCursor() {
	n := len(s.items())
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s *homeScreen) update(a *App, msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case resultMsg:
		if msg.err != nil {
			s.loading = false
			a.log.Warn("home: %v", msg.err)
			a.showAlert("Error", "Could not load recipes, please try again.", nil)
			return nil
		}
		switch v := msg.value.(type) {
		case *engine.Feed:
			s.loading = false
			s.feed = v
		case searchResults:
			if v.query == s.query {
				s.results = v.items
			}
		}
		s.clampCursor()
		return nil

	case tea.KeyMsg:
		if s.searching {
			return s.updateSearch(a, msg)
		}
		return s.updateKeys(a, msg)
	}

	if s.searching {
		var cmd tea.Cmd
		s.search, cmd = s.search.Update(msg)
		return cmd
	}
	return nil
}

func (s *homeScreen) updateSearch(a *App, msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Select):
		s.searching = false
		s.search.Blur()
		return s.setQuery(a, s.search.Value())
	case key.Matches(msg, keys.Back):
		s.searching = false
		s.search.Blur()
		return nil
	}
	var cmd tea.Cmd
	s.search, cmd = s.search.Update(msg)
	return cmd
}

func (s *homeScreen) setQuery(a *App, q string) tea.Cmd {
	s.query = strings.TrimSpace(q)
	s.search.SetValue(s.query)
	s.results = nil
	s.cursor = 0
	if s.query == "" {
		return nil
	}
	return s.runSearch(a, s.query)
}

func (s *homeScreen) updateKeys(a *App, msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Search):
		s.searching = true
		return s.search.Focus()
	case key.Matches(msg, keys.Back):
		if s.query != "" {
			return s.setQuery(a, "")
		}
		return nil
	case key.Matches(msg, keys.Quit):
		a.quitting = true
		return tea.Quit
	case key.Matches(msg, keys.Up):
		s.cursor--
		s.clampCursor()
	case key.Matches(msg, keys.Down):
		s.cursor++
		s.clampCursor()
	case key.Matches(msg, keys.Select):
		items := s.items()
		if s.cursor < len(items) {
			return a.navigate(RouteDetail, Params{ID: items[s.cursor].ID})
		}
	case key.Matches(msg, keys.More):
		if s.query == "" {
			s.showAll = !s.showAll
			return s.fetch(a)
		}
	case key.Matches(msg, keys.Map):
		return a.navigate(RouteMap, Params{})
	case key.Matches(msg, keys.Logout):
		if err := a.eng.Logout(); err != nil {
			a.log.Warn("logout: %v", err)
		}
		return a.reset(RouteStart, Params{})
	default:
		if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(engine.TrendingSearches) {
			return s.setQuery(a, engine.TrendingSearches[n-1])
		}
	}
	return nil
}

func (s *homeScreen) view(a *App) string {
	var b strings.Builder

	name := "chef"
	if sess := a.eng.Session(); sess != nil && sess.Account.Username != "" {
		name = sess.Account.Username
	}
	b.WriteString(titleStyle.Render("Hi, "+name) + "\n")
	b.WriteString(subtitleStyle.Render("What are you cooking today?") + "\n\n")
	b.WriteString(s.search.View() + "\n\n")

	chips := make([]string, len(engine.TrendingSearches))
	for i, t := range engine.TrendingSearches {
		chips[i] = chipStyle.Render(fmt.Sprintf("%d %s", i+1, t))
	}
	b.WriteString(dimStyle.Render("Trending ") + strings.Join(chips, " ") + "\n\n")

	if s.query != "" {
		b.WriteString(titleStyle.Render(fmt.Sprintf("Results for %q", s.query)) + "\n")
		if len(s.results) == 0 {
			b.WriteString(dimStyle.Render("No recipes found.") + "\n")
		}
		for i, r := range s.results {
			b.WriteString(recipeLine(r, i == s.cursor) + "\n")
		}
		b.WriteString("\n" + a.helpView(keys.Up, keys.Down, keys.Select, keys.Search, keys.Back))
		return b.String()
	}

	if s.feed == nil {
		b.WriteString(a.spinner.View() + dimStyle.Render(" loading recipes…") + "\n")
		return b.String()
	}

	header := "Popular Recipes"
	if s.loading {
		header += " " + a.spinner.View()
	}
	b.WriteString(titleStyle.Render(header) + "\n")
	for i, r := range s.feed.Recipes {
		b.WriteString(recipeLine(r, i == s.cursor) + "\n")
	}
	switch {
	case s.feed.HasMore():
		b.WriteString(linkStyle.Render("View More") + "\n")
	case s.feed.ShowAll && len(s.feed.Suggestions) > 0:
		b.WriteString(linkStyle.Render("View Less") + "\n")
	}

	if len(s.feed.Suggestions) > 0 {
		b.WriteString("\n" + titleStyle.Render("Maybe you like") + "\n")
		off := len(s.feed.Recipes)
		for i, r := range s.feed.Suggestions {
			b.WriteString(recipeLine(r, off+i == s.cursor) + "\n")
		}
	}

	b.WriteString("\n" + a.helpView(keys.Up, keys.Down, keys.Select, keys.Search, keys.More, keys.Map, keys.Logout, keys.Quit))
	return b.String()
}

func recipeLine(r domain.RecipeSummary, selected bool) string {
	marker, name := "  ", textStyle.Render(r.Name)
	if selected {
		marker, name = selectedStyle.Render("▸ "), selectedStyle.Render(r.Name)
	}
	meta := []string{
		badge(r.Difficulty.String()),
		starStyle.Render("★") + textStyle.Render(fmt.Sprintf(" %.1f", r.Rating)) + dimStyle.Render(fmt.Sprintf(" (%d+)", r.ReviewCount)),
	}
	if r.Duration != "" {
		meta = append(meta, dimStyle.Render(r.Duration))
	}
	if r.Category != "" {
		meta = append(meta, dimStyle.Render(r.Category))
	}
	return marker + name + "  " + strings.Join(meta, "  ")
}
