// Command generate_schema rewrites internal/database/schema.sql from the
// embedded migrations. With --check it only reports whether the file is stale.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"moodlog/internal/database"

	"github.com/spf13/cobra"
)

func main() {
	var out string
	var check bool

	cmd := &cobra.Command{
		Use:          "generate_schema",
		Short:        "Flatten the entry store migrations into schema.sql",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := database.MigratedSchema(cmd.Context())
			if err != nil {
				return err
			}

			if check {
				current, err := os.ReadFile(out)
				if err != nil {
					return err
				}
				if !bytes.Equal(current, []byte(schema)) {
					return fmt.Errorf("%s is out of date with the migrations", out)
				}
				return nil
			}

			if err := os.WriteFile(out, []byte(schema), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Printf("wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", filepath.Join("internal", "database", "schema.sql"), "schema file to write")
	cmd.Flags().BoolVar(&check, "check", false, "fail if the schema file is out of date instead of writing it")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
