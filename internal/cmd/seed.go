package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/recipeit/internal/auth"
	"github.com/hammamikhairi/recipeit/internal/config"
	"github.com/hammamikhairi/recipeit/internal/rtdb"
)

func newSeedCmd(rt *runtime) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a recipe catalogue into the configured backend",
		Long: `Write a YAML catalogue of recipes and supermarkets into the backend.

With the rtdb backend the recipes and supermarkets nodes are replaced,
using the saved sign-in token when one exists. With the sqlite backend
records are upserted by id.

Examples:
  recipeit seed --backend sqlite
  recipeit seed --backend rtdb --database-url http://localhost:9000 --file my-recipes.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat, err := loadCatalogue(file)
			if err != nil {
				return err
			}

			switch rt.cfg.Backend {
			case config.BackendRTDB:
				client := rtdb.NewClient(rt.cfg.DatabaseURL, rt.log.Named("rtdb"), rtdb.WithToken(savedToken))
				if err := client.Upload(ctx, cat.Recipes, cat.Supermarkets); err != nil {
					if rtdb.IsPermissionDenied(err) {
						return fmt.Errorf("%w (sign in first or set %s)", err, auth.TokenEnv)
					}
					return err
				}
			case config.BackendSQLite:
				store, err := openSQLite(rt)
				if err != nil {
					return err
				}
				defer store.Close()
				if err := store.Load(ctx, cat); err != nil {
					return err
				}
			default:
				return errors.New("the memory backend is seeded on every start; choose --backend rtdb or sqlite")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d recipes and %d supermarkets into %s\n",
				len(cat.Recipes), len(cat.Supermarkets), rt.cfg.Backend)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML catalogue (default: the built-in sample recipes)")
	return cmd
}

// savedToken returns the token of the remembered session, or "".
func savedToken() string {
	path, err := auth.DefaultCredentialPath()
	if err != nil {
		return ""
	}
	s, err := auth.NewCredentialStore(path).Load()
	if err != nil {
		return ""
	}
	return s.Token
}
