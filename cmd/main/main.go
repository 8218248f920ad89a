package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hxql",
		Short: "hxql - server-side rendering with Handlebars and GraphQL",
		Long: `hxql serves a directory of pages, rendering each index.html as a Handlebars
template against data fetched from a GraphQL server or passed in as props.

Pages are routed by directory: src/about/index.html answers /about and any
nested route below it. Files under src/public are served as static assets.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newStartCommand())

	return rootCmd
}

func main() {
	baseLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := NewRootCommand().Execute(); err != nil {
		baseLogger.Error("hxql exited with an error", "error", err)
		os.Exit(1)
	}
}
