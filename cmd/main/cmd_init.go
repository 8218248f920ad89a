package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// DefaultStarterRepo is cloned by `hxql init` unless --template is given.
const DefaultStarterRepo = "https://github.com/The-Devoyage/hxql-starter.git"

type initOptions struct {
	name     string
	template string
}

func newInitCommand() *cobra.Command {
	opts := &initOptions{}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new hxql project from the starter template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := slog.New(slog.NewTextHandler(cmd.OutOrStdout(), nil))
			return runInit(cmd.Context(), logger, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "Name of the hxql app (and the directory to create)")
	cmd.Flags().StringVarP(&opts.template, "template", "t", DefaultStarterRepo, "Git URL of the starter template")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// runInit clones the starter template into opts.name and replaces its git
// history with a fresh repository.
func runInit(ctx context.Context, logger *slog.Logger, opts *initOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	name := strings.TrimSpace(opts.name)
	if name == "" {
		return errors.New("project name must not be empty")
	}
	if _, err := os.Stat(name); err == nil {
		return fmt.Errorf("%s already exists", name)
	}

	logger.Info("Initializing project", "name", name)

	logger.Info("Cloning the template project", "template", opts.template)
	if err := runGit(ctx, cloneArgs(opts.template, name)...); err != nil {
		return fmt.Errorf("failed to clone the template project: %w", err)
	}

	logger.Info("Initializing git repository")
	if err := os.RemoveAll(filepath.Join(name, ".git")); err != nil {
		return fmt.Errorf("failed to remove the existing git repository: %w", err)
	}
	if err := runGit(ctx, "init", "--", name); err != nil {
		return fmt.Errorf("failed to initialize a new git repository: %w", err)
	}

	logger.Info("Project initialized successfully", "name", name)
	return nil
}

// cloneArgs builds the git clone arguments. The "--" keeps a template or name
// that starts with a dash from being read as an option.
func cloneArgs(template, name string) []string {
	return []string{"clone", "--depth", "1", "--", template, name}
}

func runGit(ctx context.Context, args ...string) error {
	out, err := exec.CommandContext(ctx, "git", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
