// CLI tool to run pending Postgres migrations from db/.
// Files already recorded in the migrations table are skipped; each pending
// file runs in its own transaction together with its record insert.
// The local sqlite store migrates itself on startup and does not need this.
// Usage: go run ./cmd/migrate [dir] (from the repository root)
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"

	"lg/calgemini-api/internal/dbenv"
)

func main() {
	dir := "db"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	if err := run(context.Background(), dir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, dir string) error {
	files, err := pendingFiles(dir)
	if err != nil {
		return err
	}

	conn, err := dbenv.Connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	applied := appliedMigrations(ctx, conn)
	ran := 0
	for _, path := range files {
		name := filepath.Base(path)
		if applied[name] {
			fmt.Printf("  skip: %s\n", name)
			continue
		}
		if err := apply(ctx, conn, path); err != nil {
			return err
		}
		fmt.Printf("  applied: %s\n", name)
		ran++
	}

	if ran == 0 {
		fmt.Println("No pending migrations.")
	} else {
		fmt.Printf("\n%d migration(s) applied.\n", ran)
	}
	return nil
}

// pendingFiles lists dir's .sql files in name order, which is date order.
func pendingFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no migration files found in %s", dir)
	}
	slices.Sort(files)
	return files, nil
}

// appliedMigrations reads the migrations table. Before the first migration
// creates it the query fails and the result is empty.
func appliedMigrations(ctx context.Context, conn *pgx.Conn) map[string]bool {
	applied := make(map[string]bool)
	rows, err := conn.Query(ctx, "SELECT migration FROM migrations")
	if err != nil {
		return applied
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return applied
	}
	for _, name := range names {
		applied[name] = true
	}
	return applied
}

func apply(ctx context.Context, conn *pgx.Conn, path string) error {
	name := filepath.Base(path)
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	return pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("run %s: %w", name, err)
		}
		if _, err := tx.Exec(ctx,
			"INSERT INTO migrations (migration, description) VALUES ($1, $2)",
			name, descriptionFromFilename(name)); err != nil {
			return fmt.Errorf("record %s: %w", name, err)
		}
		return nil
	})
}

var migrationPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-\d{3}-`)

// descriptionFromFilename strips the YYYY-MM-DD-NNN- prefix and .sql suffix.
func descriptionFromFilename(filename string) string {
	name := strings.TrimSuffix(filename, ".sql")
	name = migrationPrefix.ReplaceAllString(name, "")
	return strings.ReplaceAll(name, "-", " ")
}
