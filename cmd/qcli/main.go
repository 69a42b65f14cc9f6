// Package main provides qcli, the terminal console for the Quantix control
// plane.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/quantix-cloud/qcli/pkg/api"
	"github.com/quantix-cloud/qcli/pkg/app"
	"github.com/quantix-cloud/qcli/pkg/app/views/create"
	settingsview "github.com/quantix-cloud/qcli/pkg/app/views/settings"
	"github.com/quantix-cloud/qcli/pkg/app/views/vmlist"
	"github.com/quantix-cloud/qcli/pkg/settings"
)

// version is set via -ldflags during build
var version = "dev"

func main() {
	rootCmd := newRootCmd()

	// Cobra handles error printing
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd creates the root command for qcli.
func newRootCmd() *cobra.Command {
	var endpoint string

	rootCmd := &cobra.Command{
		Use:   "qcli",
		Short: "Quantix virtual datacenter console",
		Long: `qcli is a terminal console for the Quantix control plane.

Without a subcommand it opens the full-screen console with the VM list,
the creation wizard, and settings. Subcommands cover the same operations
for scripting.`,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(endpoint)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "",
		"control plane URL (default: QCLI_ENDPOINT or saved settings)")

	rootCmd.AddCommand(
		newListCmd(&endpoint),
		newWatchCmd(&endpoint),
		newConsoleCmd(&endpoint),
		newGenerateCmd(),
	)

	return rootCmd
}

// resolveEndpoint picks the control-plane URL: flag, then environment, then
// saved settings.
func resolveEndpoint(flag string, store *settings.Store) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("QCLI_ENDPOINT"); env != "" {
		return env, nil
	}

	prefs, err := store.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load settings: %w", err)
	}
	if prefs.Endpoint != "" {
		return prefs.Endpoint, nil
	}

	return "", fmt.Errorf("no control plane endpoint configured (use --endpoint, QCLI_ENDPOINT, or the settings tab)")
}

// runConsole launches the full-screen console.
func runConsole(endpointFlag string) error {
	store, err := settings.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open settings store: %w", err)
	}

	endpoint, err := resolveEndpoint(endpointFlag, store)
	if err != nil {
		return err
	}

	client := api.New(endpoint)

	model := app.New(endpoint).WithTabs(
		vmlist.New(client, store),
		create.New(client, store),
		settingsview.New(store),
	)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("console exited with error: %w", err)
	}
	return nil
}
