package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	exportOut     string
	exportEncrypt bool
)

var exportCmd = &cobra.Command{
	Use:   "export [persona-id]",
	Short: "Write a persona to a JSON file, optionally password-protected",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := ""
		if exportEncrypt {
			pw, err := readNewPassword(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			password = pw
		}

		c, err := loadContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Cleanup()

		data, filename, err := c.Personas.Export(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		path := exportOut
		if path == "" {
			path = filename
		}
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a persona file (asks for the password if it is encrypted)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}

		c, err := loadContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Cleanup()

		prompt := func(ctx context.Context) (string, error) {
			return readPassword(cmd.ErrOrStderr(), "Password: ")
		}
		p, err := c.Personas.Import(cmd.Context(), data, prompt)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %q (%s)\n", p.Profile.Name, p.ID)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output path (default: derived from the persona name)")
	exportCmd.Flags().BoolVar(&exportEncrypt, "encrypt", false, "Protect the file with a password")
}
