// RecipeIt: a terminal recipe book.
//
// Usage:
//
//	recipeit [--backend rtdb|memory|sqlite] [--log-level off|normal|verbose]
//	recipeit recipes [--search q]
//	recipeit show <id>
//	recipeit serve [--addr :9000] [--require-auth]
//	recipeit seed [--file catalogue.yaml]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hammamikhairi/recipeit/internal/cmd"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
