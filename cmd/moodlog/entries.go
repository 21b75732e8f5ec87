package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"moodlog/internal/mood"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// add command
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a mood entry",
	Example: `  moodlog add --set energy=4 --set guilt=2 --note "slept badly"
  moodlog add -s excitement=7`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs, _ := cmd.Flags().GetStringArray("set")

		var note *string
		if cmd.Flags().Changed("note") {
			n, _ := cmd.Flags().GetString("note")
			note = &n
		}

		a, err := newApp(cmd.Context(), "AddEntry")
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.AddEntry(cmd.Context(), pairs, note)
		if err != nil {
			return fmt.Errorf("adding entry: %w", err)
		}

		fmt.Printf("Saved entry #%d\n", id)
		return nil
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		unsynced, _ := cmd.Flags().GetBool("unsynced")
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd.Context(), "List")
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.Entries(cmd.Context(), unsynced)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No entries.")
			return nil
		}
		if limit > 0 && len(entries) > limit {
			entries = entries[:limit]
		}

		printEntries(entries, a.Registry().Labels(), time.Now())
		return nil
	},
}

func printEntries(entries []*mood.Entry, labels mood.Labels, now time.Time) {
	bold := color.New(color.Bold)
	synced := color.New(color.FgGreen)
	pending := color.New(color.FgYellow)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.Wrap = true
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("When"), bold.Sprint("Sync"), bold.Sprint("Ratings"), bold.Sprint("Note"))

	for _, e := range entries {
		state := pending.Sprint("pending")
		if e.Exported {
			state = synced.Sprint("exported")
		}

		var ratings []string
		for _, k := range e.Values.Keys() {
			if v, ok := e.Values.Rating(k); ok {
				ratings = append(ratings, fmt.Sprintf("%s %d", labels.Label(k), v))
			}
		}

		note := ""
		if e.Values.Note != nil {
			note = *e.Values.Note
		}

		tbl.AddRow(e.ID, humanize.RelTime(e.Time(), now, "ago", "from now"), state, strings.Join(ratings, ", "), note)
	}
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(color.Output, tbl)
}

// export command
var exportCmd = &cobra.Command{
	Use:       "export json|csv|unsynced",
	Short:     "Write entries to the export location",
	Long:      "Write all entries as JSON or CSV, or write the unsynced entries as CSV and mark them exported.",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"json", "csv", "unsynced"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "Export")
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Export(cmd.Context(), args[0])
		if msg, ok := informational(err); ok {
			fmt.Println(msg)
			return nil
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		fmt.Printf("Exported %d entries to %s (%s)\n", res.Count, res.Name, humanize.Bytes(uint64(res.Size)))
		return nil
	},
}

// undo command
var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Mark the last unsynced export as not exported",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "Undo")
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.Undo(cmd.Context())
		if msg, ok := informational(err); ok {
			fmt.Println(msg)
			return nil
		}
		if err != nil {
			return fmt.Errorf("undo failed: %w", err)
		}

		fmt.Printf("Restored %d entries to unsynced\n", n)
		return nil
	},
}

// import command
var importCmd = &cobra.Command{
	Use:   "import [FILE]",
	Short: "Import entries from a JSON file",
	Long: `Import entries from a JSON array. Both the export format and bare rating
objects are accepted. Every imported entry gets a new id.

Use --export NAME to import a file from the export location instead of a local path.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exportName, _ := cmd.Flags().GetString("export")
		encrypted, _ := cmd.Flags().GetBool("encrypted")

		if (exportName == "") == (len(args) == 0) {
			return fmt.Errorf("give either FILE or --export NAME")
		}
		source := exportName
		if len(args) > 0 {
			source = args[0]
		}

		opts := mood.ImportOptions{Encrypted: encrypted}
		if encrypted || strings.HasSuffix(source, ".age") {
			pass, err := readPassphrase("Passphrase: ")
			if err != nil {
				return err
			}
			opts.Passphrase = pass
		}

		bar := newImportProgress()
		opts.Progress = bar.update

		a, err := newApp(cmd.Context(), "Import")
		if err != nil {
			return err
		}
		defer a.Close()

		var res *mood.ImportResult
		if exportName != "" {
			res, err = a.ImportExport(cmd.Context(), exportName, opts)
		} else {
			res, err = a.ImportFile(cmd.Context(), source, opts)
		}
		bar.finish()
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		fmt.Printf("Imported %d entries", res.Imported)
		if res.Skipped > 0 {
			fmt.Printf(", skipped %d unrecognized items", res.Skipped)
		}
		fmt.Println()
		return nil
	},
}

// importProgress draws a progress bar on stderr when it is a terminal.
type importProgress struct {
	enabled bool
	bar     *progressbar.ProgressBar
}

func newImportProgress() *importProgress {
	return &importProgress{enabled: term.IsTerminal(int(os.Stderr.Fd()))}
}

func (p *importProgress) update(done, total int) {
	if !p.enabled {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Importing"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set(done)
}

func (p *importProgress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// clear command
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("this deletes every entry and cannot be undone: rerun with --yes")
		}

		a, err := newApp(cmd.Context(), "Clear")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("clear failed: %w", err)
		}

		fmt.Println("All entries deleted.")
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View command history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd.Context(), "GetHistory")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.History(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		failed := color.New(color.FgRed)
		tbl := uitable.New()
		tbl.Separator = "  "
		for _, op := range ops {
			duration := ""
			if op.FinishedAt.Valid {
				d := op.FinishedAt.Time.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			status := op.Status
			if status == "error" {
				status = failed.Sprint(status)
			}
			tbl.AddRow(fmt.Sprintf("#%d", op.ID), op.Operation, op.StartedAt.Local().Format("2006-01-02 15:04:05"), status, duration, op.Parameters)
		}
		_, _ = fmt.Fprintln(color.Output, tbl)
		return nil
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a snapshot of the database to the export location",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "Backup")
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Backup(cmd.Context())
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}

		fmt.Printf("Wrote %s (%d entries, %s)\n", res.Name, res.Count, humanize.Bytes(uint64(res.Size)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringArrayP("set", "s", nil, "Rating as key=value (repeatable)")
	addCmd.Flags().StringP("note", "m", "", "Free-text note")

	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolP("unsynced", "u", false, "Only show entries not yet exported")
	listCmd.Flags().IntP("limit", "n", 0, "Maximum number of entries to show (0 for all)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(undoCmd)

	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("export", "", "Import a file from the export location by name")
	importCmd.Flags().Bool("encrypted", false, "Treat the input as encrypted even without an .age suffix")

	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().Bool("yes", false, "Confirm deleting every entry")

	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")

	rootCmd.AddCommand(backupCmd)
}
