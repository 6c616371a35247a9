package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lexassist/internal/preflight"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Check that the configured text and vision models are installed",
	Long: `Resolve the model provider from the environment, ask it which models are installed
and print how to install anything missing. Exits non-zero when something is missing.`,
	RunE: runModels,
}

func runModels(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), rt.cfg.OllamaTimeout)
	defer cancel()

	results := preflight.NewChecker(rt.resolver, rt.factory, rt.cfg.ProvidersFile).RunAll(ctx)

	out := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintf(out, "[%s] %s: %s\n", r.Status, r.Name, r.Message)
		if r.Error != nil {
			fmt.Fprintf(out, "       %v\n", r.Error)
		}
	}

	if commands := preflight.PullCommands(results); len(commands) > 0 {
		fmt.Fprintln(out, "\nTo install the missing models run:")
		for _, c := range commands {
			fmt.Fprintf(out, "  %s\n", c)
		}
	}

	if preflight.HasIssues(results) {
		return errors.New("model setup is incomplete")
	}
	fmt.Fprintln(out, "\nAll models are ready.")
	return nil
}
