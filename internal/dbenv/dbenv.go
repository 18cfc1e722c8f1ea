// Package dbenv opens the Postgres connection shared by the command-line
// tools, reading DB_URL from the environment or a .env file.
package dbenv

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

// ErrNoURL is returned when DB_URL is unset after loading .env.
var ErrNoURL = errors.New("DB_URL is required")

// URL loads .env if present and returns DB_URL. A missing .env is not an
// error; the variable may come from the real environment.
func URL() (string, error) {
	_ = godotenv.Load()
	url := os.Getenv("DB_URL")
	if url == "" {
		return "", ErrNoURL
	}
	return url, nil
}

// Connect opens a single connection to DB_URL.
func Connect(ctx context.Context) (*pgx.Conn, error) {
	url, err := URL()
	if err != nil {
		return nil, err
	}
	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return conn, nil
}
