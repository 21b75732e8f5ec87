package main

import (
	"errors"
	"fmt"
	"strings"

	"moodlog/internal/mood"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

// schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "View and edit emotion categories",
}

var schemaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show categories, labels and which keys are tracked",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "SchemaShow")
		if err != nil {
			return err
		}
		defer a.Close()

		reg := a.Registry()
		labels := reg.Labels()
		header := color.New(color.Bold, color.Underline)
		faint := color.New(color.Faint)

		for _, c := range reg.Effective().Categories {
			fmt.Fprintln(color.Output, header.Sprint(c.Title))

			tbl := uitable.New()
			tbl.Separator = "  "
			for _, k := range c.Keys {
				mark := faint.Sprint("untracked")
				if reg.IsTracked(k) {
					mark = "tracked"
				}
				tbl.AddRow("  "+k, labels.Label(k), mark)
			}
			fmt.Fprintln(color.Output, tbl)
			fmt.Println()
		}
		if _, ok := reg.SavedOverride(); ok {
			fmt.Fprintln(color.Output, faint.Sprint("Custom categories in effect. `moodlog schema reset` restores the defaults."))
		}
		return nil
	},
}

var schemaKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Print every key in form and CSV order",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "SchemaKeys")
		if err != nil {
			return err
		}
		defer a.Close()

		for _, k := range a.Registry().AllKeys() {
			fmt.Println(k)
		}
		return nil
	},
}

var schemaResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop custom categories and use the defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "SchemaReset")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ResetSchema(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Default categories restored.")
		return nil
	},
}

var schemaExportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Write the categories config to FILE",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "SchemaExport")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ExportSchemaFile(args[0]); err != nil {
			return fmt.Errorf("exporting categories: %w", err)
		}
		fmt.Printf("Categories written to %s\n", args[0])
		return nil
	},
}

var schemaImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Replace custom categories with the config in FILE",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "SchemaImport")
		if err != nil {
			return err
		}
		defer a.Close()

		added, err := a.ImportSchemaFile(cmd.Context(), args[0])
		var dup *mood.DuplicateKeysError
		if errors.As(err, &dup) {
			return fmt.Errorf("categories not saved: %w", dup)
		}
		if err != nil {
			return fmt.Errorf("importing categories: %w", err)
		}

		fmt.Println("Categories saved.")
		if len(added) > 0 {
			warnf("New keys: %s. Earlier entries have no values for them.\n", strings.Join(added, ", "))
		}
		return nil
	},
}

var schemaLabelCmd = &cobra.Command{
	Use:   "label KEY [LABEL]",
	Short: "Set the display label for KEY, or restore the default when LABEL is omitted",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := ""
		if len(args) == 2 {
			label = strings.TrimSpace(args[1])
		}

		a, err := newApp(cmd.Context(), "SchemaLabel")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.SetLabel(cmd.Context(), args[0], label); err != nil {
			return err
		}
		fmt.Printf("%s is shown as %q\n", args[0], a.Registry().Labels().Label(args[0]))
		return nil
	},
}

// track command
var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Choose which emotions are recorded",
}

var trackShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List tracked keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "TrackShow")
		if err != nil {
			return err
		}
		defer a.Close()

		labels := a.Registry().Labels()
		tbl := uitable.New()
		tbl.Separator = "  "
		for _, k := range a.Registry().TrackedKeys() {
			tbl.AddRow(k, labels.Label(k))
		}
		fmt.Fprintln(color.Output, tbl)
		return nil
	},
}

var trackSetCmd = &cobra.Command{
	Use:   "set KEY...",
	Short: "Track exactly the given keys",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "TrackSet")
		if err != nil {
			return err
		}
		defer a.Close()

		kept, err := a.SetTracked(cmd.Context(), args)
		if err != nil {
			return err
		}
		if dropped := len(args) - len(kept); dropped > 0 {
			warnf("Ignored %d unknown or repeated keys.\n", dropped)
		}
		fmt.Printf("Tracking: %s\n", strings.Join(kept, ", "))
		return nil
	},
}

func init() {
	schemaCmd.AddCommand(schemaShowCmd)
	schemaCmd.AddCommand(schemaKeysCmd)
	schemaCmd.AddCommand(schemaResetCmd)
	schemaCmd.AddCommand(schemaExportCmd)
	schemaCmd.AddCommand(schemaImportCmd)
	schemaCmd.AddCommand(schemaLabelCmd)
	rootCmd.AddCommand(schemaCmd)

	trackCmd.AddCommand(trackShowCmd)
	trackCmd.AddCommand(trackSetCmd)
	rootCmd.AddCommand(trackCmd)
}
