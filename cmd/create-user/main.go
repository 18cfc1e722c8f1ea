// CLI tool to create a user with a bcrypt-hashed password and an empty profile.
// The profile is completed through onboarding (PUT /api/profile).
// Usage: go run ./cmd/create-user (from the repository root)
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"lg/calgemini-api/internal/dbenv"
)

const defaultThemeJSON = `{"primary":"#10b981","secondary":"#0f172a","accent":"#f59e0b","background":"#f8fafc","style":"minimalism"}`

func main() {
	ctx := context.Background()
	conn, err := dbenv.Connect(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	reader := bufio.NewReader(os.Stdin)
	username := prompt(reader, "Username")
	name := prompt(reader, "Display name")
	email := prompt(reader, "Email")
	password := prompt(reader, "Password")

	if username == "" || len(password) < 8 {
		fmt.Fprintln(os.Stderr, "Username is required and password must be at least 8 characters")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}

	authToken := uuid.New().String()

	var userID int
	err = conn.QueryRow(ctx,
		`INSERT INTO users (username, email, password, auth_token)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		username, email, string(hash), authToken,
	).Scan(&userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
		os.Exit(1)
	}

	// Column defaults cover units, subscription tier and the free scan quota.
	_, err = conn.Exec(ctx,
		`INSERT INTO profiles (user_id, name, email, theme)
		 VALUES ($1, $2, $3, $4)`,
		userID, name, email, defaultThemeJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating profile: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nUser created successfully!\n")
	fmt.Printf("  ID:         %d\n", userID)
	fmt.Printf("  Username:   %s\n", username)
	fmt.Printf("  Auth Token: %s\n", authToken)
}

// prompt prints label and returns the next input line, trimmed.
func prompt(r *bufio.Reader, label string) string {
	fmt.Printf("%s: ", label)
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}
