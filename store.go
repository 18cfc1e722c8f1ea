package main

import (
	"context"
	"errors"
)

// Sentinel errors returned by every store implementation.
var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("already exists")
)

// store is the persistence boundary for all handlers. pgStore backs
// production; localStore (sqlite) is used when DB_URL is unset and in tests.
// Every entry operation is scoped by user ID; an ID owned by another user
// reads as errNotFound.
type store interface {
	// createUser inserts the user and its default profile row.
	createUser(ctx context.Context, u user, name string) (user, error)
	userByUsername(ctx context.Context, username string) (user, error)
	userIDByToken(ctx context.Context, token string) (int, error)

	getProfile(ctx context.Context, userID int) (profile, error)
	// updateProfile loads the row, applies fn and writes it back inside one
	// transaction, so concurrent updates to the same user serialize. An error
	// from fn aborts without writing.
	updateProfile(ctx context.Context, userID int, fn func(*profile) error) (profile, error)
	profileByStripeCustomer(ctx context.Context, customerID string) (profile, error)

	// Ranges are inclusive YYYY-MM-DD dates.
	listFoodEntries(ctx context.Context, userID int, start, end string) ([]foodEntry, error)
	createFoodEntry(ctx context.Context, e foodEntry) (foodEntry, error)
	updateFoodEntry(ctx context.Context, userID, id int, patch foodEntryPatch) (foodEntry, error)
	deleteFoodEntry(ctx context.Context, userID, id int) error

	listExerciseEntries(ctx context.Context, userID int, start, end string) ([]exerciseEntry, error)
	createExerciseEntry(ctx context.Context, e exerciseEntry) (exerciseEntry, error)
	deleteExerciseEntry(ctx context.Context, userID, id int) error

	listWeightEntries(ctx context.Context, userID int, start, end string) ([]weightEntry, error)
	// upsertWeightEntry replaces the weight for (user, date) if one exists.
	upsertWeightEntry(ctx context.Context, e weightEntry) (weightEntry, error)
	deleteWeightEntry(ctx context.Context, userID, id int) error
	// latestWeightDate returns "" when the user has no weight entries.
	latestWeightDate(ctx context.Context, userID int) (string, error)

	// earliestLogDate returns the first date with a food or exercise entry,
	// or "" when nothing has been logged.
	earliestLogDate(ctx context.Context, userID int) (string, error)
}

// allTime bounds a range query that should return every entry.
const (
	allTimeStart = "0001-01-01"
	allTimeEnd   = "9999-12-31"
)
