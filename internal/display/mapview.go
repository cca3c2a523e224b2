package display

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hammamikhairi/recipeit/internal/domain"
	"github.com/hammamikhairi/recipeit/internal/engine"
	"github.com/hammamikhairi/recipeit/internal/maps"
)

type mapAction struct {
	url  string
	note string
}

type mapScreen struct {
	all     []domain.Supermarket
	shown   []domain.Supermarket
	loading bool

	search    textinput.Model
	searching bool

	cursor   int
	selected *domain.Supermarket
	status   string
}

func newMapScreen() *mapScreen {
	in := textinput.New()
	in.Placeholder = "Search supermarket"
	in.Prompt = "⌕ "
	in.PromptStyle = dimStyle
	in.CharLimit = 64
	return &mapScreen{search: in}
}

func (s *mapScreen) init(a *App) tea.Cmd {
	if s.all != nil {
		return nil
	}
	s.loading = true
	return a.async(func(ctx context.Context) (any, error) {
		return a.eng.Supermarkets(ctx, "")
	})
}

func (s *mapScreen) filter() {
	s.shown = engine.FilterSupermarkets(s.all, s.search.Value())
	if s.cursor >= len(s.shown) {
		s.cursor = max(len(s.shown)-1, 0)
	}
}

func (s *mapScreen) current() (domain.Supermarket, bool) {
	if s.selected != nil {
		return *s.selected, true
	}
	if s.cursor < len(s.shown) {
		return s.shown[s.cursor], true
	}
	return domain.Supermarket{}, false
}

func (s *mapScreen) update(a *App, msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case resultMsg:
		return s.handleResult(a, msg)

	case tea.KeyMsg:
		if s.searching {
			switch {
			case key.Matches(msg, keys.Select, keys.Back):
				s.searching = false
				s.search.Blur()
				return nil
			}
			var cmd tea.Cmd
			s.search, cmd = s.search.Update(msg)
			s.filter()
			return cmd
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

func (s *mapScreen) handleResult(a *App, msg resultMsg) tea.Cmd {
	switch v := msg.value.(type) {
	case []domain.Supermarket:
		s.loading = false
		if msg.err != nil {
			a.log.Warn("supermarkets: %v", msg.err)
			a.showAlert("Error", "Could not load supermarkets.", a.back)
			return nil
		}
		s.all = v
		if s.all == nil {
			s.all = []domain.Supermarket{}
		}
		s.filter()
	case mapAction:
		if msg.err != nil {
			a.log.Warn("map link: %v", msg.err)
			s.status = errorStyle.Render("Could not open the map: ") + linkStyle.Render(v.url)
			return nil
		}
		s.status = dimStyle.Render(v.note)
	}
	return nil
}

func (s *mapScreen) updateKeys(a *App, msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Back):
		if s.selected != nil {
			s.selected = nil
			s.status = ""
			return nil
		}
		return a.back()
	case key.Matches(msg, keys.Search):
		s.searching = true
		s.selected = nil
		return s.search.Focus()
	case key.Matches(msg, keys.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(msg, keys.Down):
		if s.cursor < len(s.shown)-1 {
			s.cursor++
		}
	case key.Matches(msg, keys.Select):
		if s.cursor < len(s.shown) {
			m := s.shown[s.cursor]
			s.selected = &m
			s.status = ""
		}
	case key.Matches(msg, keys.Go):
		if m, ok := s.current(); ok {
			return s.open(a, m)
		}
	case key.Matches(msg, keys.Copy):
		if m, ok := s.current(); ok {
			return s.copy(a, m)
		}
	}
	return nil
}

// open hands the link to the platform handler, which falls back to the
// clipboard on its own.
func (s *mapScreen) open(a *App, m domain.Supermarket) tea.Cmd {
	return a.async(func(ctx context.Context) (any, error) {
		note, err := a.eng.OpenMap(m)
		return mapAction{url: a.eng.MapURL(m), note: note}, err
	})
}

func (s *mapScreen) copy(a *App, m domain.Supermarket) tea.Cmd {
	return a.async(func(ctx context.Context) (any, error) {
		note, err := a.eng.CopyMap(m)
		return mapAction{url: a.eng.MapURL(m), note: note}, err
	})
}

func (s *mapScreen) view(a *App) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Supermarkets near you") + "\n")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Around Semarang (%.4f, %.4f)", maps.Semarang.Lat, maps.Semarang.Lng)) + "\n\n")
	b.WriteString(s.search.View() + "\n\n")

	if s.loading {
		b.WriteString(a.spinner.View() + dimStyle.Render(" finding supermarkets…") + "\n")
		return b.String()
	}
	if len(s.shown) == 0 {
		b.WriteString(dimStyle.Render("No supermarkets match.") + "\n")
	}
	for i, m := range s.shown {
		marker, name := "  ", textStyle.Render(m.Name)
		if i == s.cursor {
			marker, name = selectedStyle.Render("▸ "), selectedStyle.Render(m.Name)
		}
		km := maps.Distance(maps.Semarang, maps.Of(m))
		b.WriteString(marker + name + dimStyle.Render(fmt.Sprintf("  %.1f km", km)) + "\n")
	}

	if s.selected != nil {
		m := s.selected
		card := titleStyle.Render(m.Name) + "\n" +
			textStyle.Render(m.Address) + "\n" +
			linkStyle.Render(a.eng.MapURL(*m)) + "\n\n" +
			chipStyle.Render("g  Let's Go")
		b.WriteString("\n" + selectedCardStyle.Width(pageWidth(a.width)).Render(card) + "\n")
	}
	if s.status != "" {
		b.WriteString("\n" + s.status + "\n")
	}

	b.WriteString("\n" + a.helpView(keys.Up, keys.Down, keys.Select, keys.Search, keys.Go, keys.Copy, keys.Back))
	return b.String()
}
