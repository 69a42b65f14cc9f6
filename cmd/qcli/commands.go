package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantix-cloud/qcli/pkg/api"
	"github.com/quantix-cloud/qcli/pkg/cloudinit"
	"github.com/quantix-cloud/qcli/pkg/console"
	"github.com/quantix-cloud/qcli/pkg/poll"
	"github.com/quantix-cloud/qcli/pkg/settings"
	"github.com/quantix-cloud/qcli/pkg/validate"
)

// newClient builds an API client from the resolved endpoint.
func newClient(endpointFlag string) (*api.Client, *settings.Store, error) {
	store, err := settings.NewStore()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open settings store: %w", err)
	}

	endpoint, err := resolveEndpoint(endpointFlag, store)
	if err != nil {
		return nil, nil, err
	}

	return api.New(endpoint), store, nil
}

// newListCmd creates the list subcommand.
func newListCmd(endpoint *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List virtual machines",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(*endpoint)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), api.DefaultTimeout)
			defer cancel()

			vms, err := client.ListVMs(ctx)
			if err != nil {
				return err
			}

			printVMs(cmd, vms)
			return nil
		},
	}
}

// printVMs writes a VM table to the command's output.
func printVMs(cmd *cobra.Command, vms []api.VM) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATE\tNODE\tIP\tCPU\tMEM")
	for _, vm := range vms {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d MiB\n",
			vm.Name, vm.State, orDash(vm.NodeID), orDash(vm.IPAddress), vm.Cores, vm.MemoryMiB)
	}
	w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// newWatchCmd creates the watch subcommand: a periodic VM table refresh for
// terminals where the full console is not wanted.
func newWatchCmd(endpoint *string) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Periodically print the VM list",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(*endpoint)
			if err != nil {
				return err
			}

			poller := poll.New(interval, func(ctx context.Context) {
				reqCtx, cancel := context.WithTimeout(ctx, api.DefaultTimeout)
				defer cancel()

				vms, err := client.ListVMs(reqCtx)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
					return
				}
				fmt.Fprintf(cmd.OutOrStdout(), "--- %s ---\n", time.Now().Format("15:04:05"))
				printVMs(cmd, vms)
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			poller.Start(ctx)
			<-ctx.Done()
			poller.Stop()
			return nil
		},
	}

	cmd.Flags().DurationVarP(&interval, "interval", "i", 5*time.Second, "refresh interval")
	return cmd
}

// newConsoleCmd creates the console subcommand. It resolves the VM by name
// and prints the console URL according to the saved preference.
func newConsoleCmd(endpoint *string) *cobra.Command {
	var native bool

	cmd := &cobra.Command{
		Use:   "console <vm-name>",
		Short: "Print the console URL for a VM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, err := newClient(*endpoint)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), api.DefaultTimeout)
			defer cancel()

			vms, err := client.ListVMs(ctx)
			if err != nil {
				return err
			}

			name := args[0]
			var vm *api.VM
			for i := range vms {
				if vms[i].Name == name {
					vm = &vms[i]
					break
				}
			}
			if vm == nil {
				return fmt.Errorf("no VM named %q", name)
			}

			prefs := store.Settings()
			if prefs == nil {
				prefs = settings.NewSettings()
			}
			if native {
				prefs.SetConsoleType(settings.ConsoleNative)
			}

			fmt.Fprintln(cmd.OutOrStdout(), console.LaunchURL(prefs, client.BaseURL(), vm.ID, vm.Name))
			return nil
		},
	}

	cmd.Flags().BoolVar(&native, "native", false, "print the native client deep link")
	return cmd
}

// newGenerateCmd creates the generate subcommand: prints the cloud-init
// user-data that would be provisioned for the given settings, without
// talking to the control plane.
func newGenerateCmd() *cobra.Command {
	var (
		user         string
		password     string
		sshKeys      []string
		installAgent bool
		origin       string
		metaData     bool
	)

	cmd := &cobra.Command{
		Use:   "generate <vm-name>",
		Short: "Print the cloud-init documents for a VM configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The VM name becomes the guest hostname
			if err := validate.Hostname(args[0]); err != nil {
				return err
			}

			opts := cloudinit.Options{
				VMName:       args[0],
				User:         user,
				Password:     password,
				SSHKeys:      sshKeys,
				InstallAgent: installAgent,
				Origin:       origin,
			}

			if metaData {
				fmt.Fprintln(cmd.OutOrStdout(), cloudinit.MetaData(args[0]))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), cloudinit.UserData(opts))
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", cloudinit.DefaultUser, "guest user to create")
	cmd.Flags().StringVarP(&password, "password", "p", "", "guest user password")
	cmd.Flags().StringArrayVarP(&sshKeys, "ssh-key", "k", nil, "authorized SSH public key (repeatable)")
	cmd.Flags().BoolVar(&installAgent, "install-agent", false, "install the guest agent on first boot")
	cmd.Flags().StringVar(&origin, "origin", "", "control plane origin for the agent install script")
	cmd.Flags().BoolVar(&metaData, "meta-data", false, "print the meta-data document instead")

	return cmd
}
