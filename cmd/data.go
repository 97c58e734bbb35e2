package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"heritage_tree/internal/service"
)

func newExportCommand(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all people as a JSON backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			people, closeStore, err := a.openPeople(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer closeStore()

			data, err := service.ExportPeople(people.List())
			if err != nil {
				return err
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if out == "" {
				out = service.BackupFilename(time.Now())
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			a.logger.Info("Exported %d people to %s", people.Len(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout")
	return cmd
}

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace all people with a JSON backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			imported, err := service.ParseImport(data)
			if err != nil {
				return err
			}

			people, closeStore, err := a.openPeople(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := people.Replace(cmd.Context(), imported); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d people\n", len(imported))
			return nil
		},
	}
}

func newIngestCommand(a *app) *cobra.Command {
	var apply bool
	cmd := &cobra.Command{
		Use:   "ingest FILE",
		Short: "Parse free text into people with the AI service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			ai, err := a.newAI()
			if err != nil {
				return err
			}
			if ai == nil {
				return service.NewError(service.ErrConfig, "ai.api_key is not set", nil)
			}

			parsed, err := ai.ParseFamilyText(cmd.Context(), string(text))
			if err != nil {
				return err
			}
			if !apply {
				data, err := service.ExportPeople(parsed)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			people, closeStore, err := a.openPeople(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer closeStore()
			if err := people.Replace(cmd.Context(), parsed); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Replaced store with %d parsed people\n", len(parsed))
			return nil
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "replace the stored people with the parsed result")
	return cmd
}
