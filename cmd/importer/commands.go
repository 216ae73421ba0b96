package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"crimestats/internal/auth"
	"crimestats/internal/db"
	"crimestats/internal/store"
)

// RootCmd is the root Cobra command that gets called from the main func.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "importer",
		Short:         "importer loads crime datasets into Postgres and manages local users.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.AddCommand(
		importCmd(),
		hashPasswordCmd(),
	)

	return cmd
}

// Normalize a CSV dataset and COPY it into crime_records.
func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a CSV dataset into the crime_records table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cmd.Flags().GetString("file")
			if err != nil {
				return err
			}
			truncate, err := cmd.Flags().GetBool("truncate")
			if err != nil {
				return err
			}
			databaseURL, err := cmd.Flags().GetString("database-url")
			if err != nil {
				return err
			}
			if databaseURL == "" {
				return errors.New("--database-url or DATABASE_URL is required")
			}

			snap, err := readDataset(path)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			database, err := db.New(ctx, databaseURL)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.RunMigrations(databaseURL); err != nil {
				return err
			}

			start := time.Now()
			var n int64
			if truncate {
				n, err = database.ReplaceCrimeRecords(ctx, snap.Records())
			} else {
				n, err = database.CopyCrimeRecords(ctx, snap.Records())
			}
			if err != nil {
				return err
			}

			slog.Info("import complete", "file", path, "rows", n, "truncated", truncate, "duration", time.Since(start))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records\n", n)
			return nil
		},
	}

	cmd.Flags().String("file", "", "CSV file with date,state,district,type,crimes columns")
	cmd.Flags().Bool("truncate", false, "Replace existing records instead of appending")
	cmd.Flags().String("database-url", os.Getenv("DATABASE_URL"), "Postgres connection string")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// Print a bcrypt hash for the users section of config.yaml.
func hashPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Read a password from stdin and print its bcrypt hash.",
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				return errors.New("password must not be empty")
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	return cmd
}

func readDataset(path string) (*store.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := store.ReadCSV(f)
	if err != nil {
		return nil, err
	}
	return store.Normalize(rows)
}
