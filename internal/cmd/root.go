// Package cmd is the recipeit command tree.
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hammamikhairi/recipeit/internal/config"
	"github.com/hammamikhairi/recipeit/internal/display"
	"github.com/hammamikhairi/recipeit/internal/logger"
)

// runtime is the state shared by every command once flags are parsed.
type runtime struct {
	v      *viper.Viper
	cfg    *config.Config
	log    *logger.Logger
	logOut io.WriteCloser
}

// Execute runs the command line until ctx is cancelled.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds the command tree. Running it without a
// subcommand starts the terminal UI.
func NewRootCommand() *cobra.Command {
	rt := &runtime{v: viper.New()}
	var cfgFile string

	root := &cobra.Command{
		Use:   "recipeit",
		Short: "Browse recipes, tick off ingredients and find supermarkets",
		Long: `RecipeIt is a terminal recipe book backed by a realtime database.

Sign in, browse the home feed, open a recipe to tick off ingredients and
page through its method, read and post reviews, and find a supermarket
nearby.

Use --backend memory (the default) to try it offline with the built-in
sample recipes, or run "recipeit serve" and point --database-url at it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.init(cfgFile)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return rt.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), rt)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.config/recipeit/config.yaml)")
	pf.String("backend", "", "data backend: rtdb, memory or sqlite")
	pf.String("database-url", "", "realtime database URL for the rtdb backend")
	pf.String("log-level", "", "log level: off, normal or verbose")
	pf.String("log-file", "", `log file ("stderr" logs to the console)`)
	for key, flag := range map[string]string{
		"backend":      "backend",
		"database_url": "database-url",
		"log_level":    "log-level",
		"log_file":     "log-file",
	} {
		_ = rt.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		newRecipesCmd(rt),
		newShowCmd(rt),
		newServeCmd(rt),
		newSeedCmd(rt),
	)
	return root
}

func (rt *runtime) init(cfgFile string) error {
	config.Setup(rt.v, cfgFile)
	if err := config.Read(rt.v); err != nil {
		return err
	}
	cfg, err := config.Load(rt.v)
	if err != nil {
		return err
	}
	rt.cfg = cfg

	out, err := logger.OpenFile(cfg.LogFile)
	if err != nil {
		return err
	}
	rt.logOut = out
	rt.log = logger.New(logger.ParseLevel(cfg.LogLevel), out)
	if used := rt.v.ConfigFileUsed(); used != "" {
		rt.log.Info("config: %s", used)
	}
	rt.log.Info("backend: %s", cfg.Backend)
	return nil
}

func (rt *runtime) close() error {
	if rt.logOut != nil {
		return rt.logOut.Close()
	}
	return nil
}

func runTUI(ctx context.Context, rt *runtime) error {
	eng, closeBackend, err := rt.newEngine(ctx)
	if err != nil {
		return err
	}
	defer closeBackend()

	if err := display.New(eng, rt.log).Run(ctx); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}
