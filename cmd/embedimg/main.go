// Command embedimg validates a candidate user ELF64 binary and copies it
// into kernel/userimage/payload.bin, where a //go:embed directive picks it
// up for the freestanding kernel build. It is the one piece of "config"
// this system has: which user program gets baked into the kernel image.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "embedimg",
		Short: "Validate and embed a user ELF binary into the kernel image",
	}

	root.AddCommand(newCheckCmd())
	root.AddCommand(newInfoCmd())
	root.AddCommand(newInstallCmd())
	return root
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "Validate that <path> is a loadable ELF64 x86_64 binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if _, err := validateELF(data); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <path>",
		Short: "Print the entry point, type and segment count of <path>",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			info, err := validateELF(data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "type=%s entry=%#x segments=%d\n", info.typeName, info.entry, info.loadSegments)
			return nil
		},
	}
}

func newInstallCmd() *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:   "install <path>",
		Short: "Validate <path> and copy it to the kernel's embedded payload location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if _, err := validateELF(data); err != nil {
				return err
			}
			if err := os.WriteFile(dest, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "installed %d bytes to %s\n", len(data), dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&dest, "dest", "kernel/userimage/payload.bin", "destination path for the embedded image")
	return cmd
}
