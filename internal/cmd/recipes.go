package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/hammamikhairi/recipeit/internal/domain"
	"github.com/hammamikhairi/recipeit/internal/review"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fdba74")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#71717a"))
	nameStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fdba74"))
)

func newRecipesCmd(rt *runtime) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "List recipes",
		Long: `List every recipe in the backend, in feed order.

Examples:
  recipeit recipes
  recipeit recipes --search avocado`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, done, err := rt.newEngine(ctx)
			if err != nil {
				return err
			}
			defer done()

			var items []domain.RecipeSummary
			if query != "" {
				if items, err = eng.Search(ctx, query); err != nil {
					return err
				}
			} else {
				feed, err := eng.Home(ctx, true)
				if err != nil {
					return err
				}
				items = feed.Recipes
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recipes found.")
				return nil
			}

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(dimStyle).
				Headers("ID", "NAME", "DIFFICULTY", "RATING", "REVIEWS", "TIME").
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == table.HeaderRow {
						return headerStyle
					}
					return cellStyle
				})
			for _, r := range items {
				t.Row(r.ID, r.Name, r.Difficulty.String(),
					fmt.Sprintf("%.1f", r.Rating), fmt.Sprintf("%d+", r.ReviewCount), r.Duration)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "search", "s", "", "only recipes whose name, description or category match")
	return cmd
}

func newShowCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one recipe with its ingredients, method and reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, done, err := rt.newEngine(ctx)
			if err != nil {
				return err
			}
			defer done()

			d, err := eng.OpenRecipe(ctx, args[0])
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("no recipe with id %q", args[0])
			}
			if err != nil {
				return err
			}

			r := d.Recipe
			var b strings.Builder
			fmt.Fprintf(&b, "%s  (%s)\n", nameStyle.Render(r.Name), r.Difficulty)
			fmt.Fprintf(&b, "★ %.1f from %d+ reviews", r.Rating, r.ReviewCount)
			if r.Duration != "" {
				fmt.Fprintf(&b, "  ·  %s", r.Duration)
			}
			b.WriteString("\n")
			if r.Description != "" {
				b.WriteString("\n" + r.Description + "\n")
			}

			b.WriteString("\nIngredients\n")
			for _, e := range d.Checklist {
				fmt.Fprintf(&b, "  [ ] %s\n", e.Label)
			}
			b.WriteString("\nMethod\n")
			for i, s := range r.Steps {
				fmt.Fprintf(&b, "  %d. %s\n", i+1, s)
			}

			avg, n := review.Aggregate(r.Reviews)
			fmt.Fprintf(&b, "\nReviews (%d, average %.1f)\n", n, avg)
			for _, row := range d.Reviews {
				fmt.Fprintf(&b, "  %s %s: %s\n", row.Stars, row.Reviewer, row.Comment)
			}
			fmt.Fprint(cmd.OutOrStdout(), b.String())
			return nil
		},
	}
}
