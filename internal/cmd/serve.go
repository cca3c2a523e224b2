package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/recipeit/internal/emulator"
	"github.com/hammamikhairi/recipeit/internal/seed"
	"github.com/hammamikhairi/recipeit/internal/storage"
)

func newServeCmd(rt *runtime) *cobra.Command {
	var (
		addr        string
		requireAuth bool
		seedFile    string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local realtime database and identity emulator",
		Long: `Serve the realtime database REST surface and the identity sign-up and
sign-in endpoints from memory, seeded with the sample catalogue.

Point the client at it with:
  recipeit --backend rtdb --database-url http://localhost:9000

and set identity_url to http://localhost:9000/v1 in config.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalogue(seedFile)
			if err != nil {
				return err
			}
			store := storage.NewSeededMemoryStore(cat, rt.log.Named("memory"))

			var opts []emulator.Option
			if requireAuth {
				opts = append(opts, emulator.WithRequireAuth())
			}
			srv := emulator.New(store, rt.log.Named("emulator"), opts...)

			host := addr
			if strings.HasPrefix(host, ":") {
				host = "localhost" + host
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Serving %d recipes at http://%s (ctrl+c to stop)\n", len(cat.Recipes), host)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":9000", "listen address")
	cmd.Flags().BoolVar(&requireAuth, "require-auth", false, "reject database calls without a token issued by this server")
	cmd.Flags().StringVar(&seedFile, "seed-file", "", "YAML catalogue to serve instead of the built-in one")
	return cmd
}

func loadCatalogue(path string) (*seed.Catalogue, error) {
	if path == "" {
		return seed.Default()
	}
	return seed.LoadFile(path)
}
