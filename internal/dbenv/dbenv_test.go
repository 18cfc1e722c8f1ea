package dbenv

import (
	"context"
	"errors"
	"testing"
)

func TestURL(t *testing.T) {
	t.Setenv("DB_URL", "")
	if _, err := URL(); !errors.Is(err, ErrNoURL) {
		t.Errorf("unset: err = %v, want ErrNoURL", err)
	}
	if _, err := Connect(context.Background()); !errors.Is(err, ErrNoURL) {
		t.Errorf("Connect unset: err = %v, want ErrNoURL", err)
	}

	t.Setenv("DB_URL", "postgres://localhost/calgemini")
	if got, err := URL(); err != nil || got != "postgres://localhost/calgemini" {
		t.Errorf("URL() = %q, %v", got, err)
	}
}
