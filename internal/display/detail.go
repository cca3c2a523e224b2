package display

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/recipeit/internal/domain"
	"github.com/hammamikhairi/recipeit/internal/engine"
	"github.com/hammamikhairi/recipeit/internal/review"
)

type reviewPosted struct{ detail *engine.Detail }

type narrationDone struct{}

type detailScreen struct {
	id      string
	d       *engine.Detail
	loading bool
	cursor  int

	bar progress.Model

	modal       bool
	input       textinput.Model
	ratingFocus bool
	posting     bool

	narrating bool
}

func newDetailScreen(id string) *detailScreen {
	in := textinput.New()
	in.Placeholder = "Share your thoughts about this recipe"
	in.Prompt = "✎ "
	in.PromptStyle = dimStyle
	in.CharLimit = 280
	return &detailScreen{
		id:    id,
		bar:   progress.New(progress.WithSolidFill(string(colorAccent)), progress.WithoutPercentage()),
		input: in,
	}
}

func (s *detailScreen) init(a *App) tea.Cmd {
	if s.d != nil {
		return nil
	}
	s.loading = true
	id := s.id
	return a.async(func(ctx context.Context) (any, error) {
		return a.eng.OpenRecipe(ctx, id)
	})
}

func pageWidth(termWidth int) int {
	w := termWidth - 8
	if w < 24 {
		w = 24
	}
	if w > 72 {
		w = 72
	}
	return w
}

func (s *detailScreen) resize(width int) {
	pw := pageWidth(width)
	s.bar.Width = pw
	if s.d != nil {
		s.d.Pager.Resize(float64(pw))
	}
}

func (s *detailScreen) update(a *App, msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.resize(msg.Width)
		return nil

	case resultMsg:
		return s.handleResult(a, msg)

	case tea.KeyMsg:
		if s.d == nil {
			if key.Matches(msg, keys.Back) {
				return a.back()
			}
			return nil
		}
		if s.modal {
			return s.updateModal(a, msg)
		}
		return s.updateKeys(a, msg)
	}

	if s.modal && !s.ratingFocus {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return cmd
	}
	return nil
}

func (s *detailScreen) handleResult(a *App, msg resultMsg) tea.Cmd {
	switch v := msg.value.(type) {
	case reviewPosted:
		s.posting = false
		if msg.err != nil {
			a.log.Warn("posting review for %s: %v", s.id, msg.err)
			a.showAlert("Review Failed", reviewMessage(msg.err), nil)
			return nil
		}
		s.d.Recipe = v.detail.Recipe
		s.d.Reviews = v.detail.Reviews
		s.d.Composer = review.NewComposer()
		s.input.Reset()
		return nil

	case narrationDone:
		s.narrating = false
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			if errors.Is(msg.err, domain.ErrNotImplemented) {
				a.showAlert("Narration", "Step narration is not configured.", nil)
			} else {
				a.log.Warn("narration: %v", msg.err)
			}
		}
		return nil
	}

	s.loading = false
	if msg.err != nil {
		a.loadFailed(msg.err)
		return nil
	}
	if d, ok := msg.value.(*engine.Detail); ok {
		s.d = d
		s.cursor = 0
		s.resize(a.width)
	}
	return nil
}

func (s *detailScreen) updateKeys(a *App, msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Back):
		return a.back()
	case key.Matches(msg, keys.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(msg, keys.Down):
		if s.cursor < len(s.d.Checklist)-1 {
			s.cursor++
		}
	case key.Matches(msg, keys.Toggle):
		if s.cursor < len(s.d.Checklist) {
			s.d.ToggleIngredient(s.d.Checklist[s.cursor].ID)
		}
	case key.Matches(msg, keys.Left):
		s.d.Pager.Prev()
	case key.Matches(msg, keys.Right):
		s.d.Pager.Next()
	case key.Matches(msg, keys.Reviews):
		s.modal = true
		s.ratingFocus = false
		return s.input.Focus()
	case key.Matches(msg, keys.Narrate):
		if s.narrating {
			a.eng.StopNarration()
			return nil
		}
		return s.narrate(a)
	case key.Matches(msg, keys.Map):
		return a.navigate(RouteMap, Params{})
	}
	return nil
}

// narrate reads the visible step. The engine gets a copy of the carousel
// so paging while it speaks does not race with it.
func (s *detailScreen) narrate(a *App) tea.Cmd {
	snap := *s.d
	pg := *s.d.Pager
	snap.Pager = &pg
	s.narrating = true
	return a.async(func(ctx context.Context) (any, error) {
		return narrationDone{}, a.eng.Narrate(ctx, &snap)
	})
}

func (s *detailScreen) updateModal(a *App, msg tea.KeyMsg) tea.Cmd {
	if s.posting {
		return nil
	}
	switch {
	case key.Matches(msg, keys.Back):
		s.modal = false
		s.input.Blur()
		return nil
	case key.Matches(msg, keys.Submit, keys.Select):
		return s.post(a)
	case msg.String() == "tab":
		s.ratingFocus = !s.ratingFocus
		if s.ratingFocus {
			s.input.Blur()
			return nil
		}
		return s.input.Focus()
	}

	if s.ratingFocus {
		c := s.d.Composer
		switch {
		case key.Matches(msg, keys.Left, keys.Down):
			c.SetRating(c.Rating - 1)
		case key.Matches(msg, keys.Right, keys.Up):
			c.SetRating(c.Rating + 1)
		default:
			if r := msg.Runes; len(r) == 1 && r[0] >= '1' && r[0] <= '5' {
				c.SetRating(int(r[0] - '0'))
			}
		}
		return nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

// post submits the draft on a copy of the detail; the screen adopts the
// copy's recipe once the write succeeds.
func (s *detailScreen) post(a *App) tea.Cmd {
	draft := &review.Composer{Text: s.input.Value(), Rating: s.d.Composer.Rating}
	if err := draft.Validate(); err != nil {
		a.showAlert("Review", reviewMessage(err), nil)
		return nil
	}
	snap := *s.d
	snap.Composer = draft
	s.posting = true
	return a.async(func(ctx context.Context) (any, error) {
		err := a.eng.SubmitReview(ctx, &snap)
		return reviewPosted{detail: &snap}, err
	})
}

func reviewMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyReview):
		return "Please write something before posting."
	case errors.Is(err, domain.ErrInvalidRating):
		return "Pick a rating from 1 to 5 stars."
	case errors.Is(err, domain.ErrNotFound):
		return "This recipe no longer exists."
	}
	return err.Error()
}

// ── View ─────────────────────────────────────────────────────────

func (s *detailScreen) view(a *App) string {
	if s.d == nil {
		if s.loading {
			return a.spinner.View() + dimStyle.Render(" loading recipe…")
		}
		return dimStyle.Render("Nothing to show.") + "\n\n" + a.helpView(keys.Back)
	}
	if s.modal {
		return s.viewModal(a)
	}

	r := s.d.Recipe
	width := pageWidth(a.width)
	var b strings.Builder

	b.WriteString(titleStyle.Render(r.Name) + "  " + badge(r.Difficulty.String()) + "\n")
	b.WriteString(starStyle.Render("★") + textStyle.Render(fmt.Sprintf(" %.1f", r.Rating)) +
		dimStyle.Render(fmt.Sprintf(" (%d+ reviews)", r.ReviewCount)))
	var meta []string
	for _, m := range []string{r.Duration, r.Category, r.Author} {
		if m != "" {
			meta = append(meta, m)
		}
	}
	if len(meta) > 0 {
		b.WriteString(dimStyle.Render("  ·  " + strings.Join(meta, "  ·  ")))
	}
	b.WriteString("\n\n")
	if r.Description != "" {
		b.WriteString(textStyle.Width(width).Render(r.Description) + "\n\n")
	}

	checked, total := s.d.Checked()
	b.WriteString(titleStyle.Render("Ingredients") + dimStyle.Render(fmt.Sprintf("  %d/%d", checked, total)) + "\n")
	for i, e := range s.d.Checklist {
		box, label := "[ ] ", textStyle.Render(e.Label)
		if e.Checked {
			box, label = "[x] ", checkedStyle.Render(e.Label)
		}
		marker := "  "
		if i == s.cursor {
			marker = selectedStyle.Render("▸ ")
		}
		b.WriteString(marker + box + label + "\n")
	}

	b.WriteString("\n" + titleStyle.Render("Method"))
	step, ok := s.d.CurrentStep()
	if !ok {
		b.WriteString("\n" + dimStyle.Render("No steps yet.") + "\n")
	} else {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  Step %d of %d", s.d.Pager.Page()+1, s.d.Pager.Steps())))
		if s.narrating {
			b.WriteString("  " + a.spinner.View() + dimStyle.Render(" reading"))
		}
		b.WriteString("\n" + cardStyle.Width(width).Render(step) + "\n")
		b.WriteString(s.bar.ViewAs(s.d.Progress()/100) + dimStyle.Render(fmt.Sprintf(" %3.0f%%", s.d.Progress())) + "\n")
	}

	b.WriteString("\n" + a.helpView(keys.Up, keys.Down, keys.Toggle, keys.Left, keys.Right, keys.Reviews, keys.Narrate, keys.Map, keys.Back))
	return b.String()
}

func (s *detailScreen) viewModal(a *App) string {
	r := s.d.Recipe
	width := pageWidth(a.width)
	var b strings.Builder

	b.WriteString(titleStyle.Render("Reviews") + dimStyle.Render(fmt.Sprintf("  %s · %d", r.Name, len(s.d.Reviews))) + "\n\n")
	if len(s.d.Reviews) == 0 {
		b.WriteString(dimStyle.Render("No reviews yet. Be the first!") + "\n")
	}
	for _, row := range s.d.Reviews {
		b.WriteString(textStyle.Bold(true).Render(row.Reviewer) + "  " + starStyle.Render(row.Stars) + "\n")
		if row.Comment != "" {
			b.WriteString(textStyle.Width(width-4).Render(row.Comment) + "\n")
		}
		b.WriteString("\n")
	}

	n := s.d.Composer.Rating
	rating := starStyle.Render(review.Stars(n)) + dimStyle.Render(strings.Repeat("☆", max(review.MaxRating-n, 0)))
	label := dimStyle.Render("Your rating ")
	if s.ratingFocus {
		label = selectedStyle.Render("Your rating ")
	}
	b.WriteString(label + rating + "\n")
	b.WriteString(s.input.View() + "\n")
	if s.posting {
		b.WriteString(a.spinner.View() + dimStyle.Render(" posting…") + "\n")
	}
	b.WriteString("\n" + a.helpView(
		key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "text/stars")),
		keys.Select, keys.Back,
	))

	return lipgloss.NewStyle().Width(width + 6).Render(modalStyle.Render(b.String()))
}
