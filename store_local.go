package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// localStore implements store on a single sqlite file through gorm. It backs
// local runs without DB_URL, and tests open it on ":memory:".
type localStore struct {
	db *gorm.DB
}

// newLocalStore opens (or creates) the sqlite database at path and
// auto-migrates every table.
func newLocalStore(path string) (*localStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// sqlite has a single writer, and each new connection to :memory: gets
	// its own empty database. One connection also serializes updateProfile.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&user{}, &profile{}, &foodEntry{}, &exerciseEntry{}, &weightEntry{})
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &localStore{db: db}, nil
}

// notFound maps gorm's missing-row error onto errNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errNotFound
	}
	return err
}

func affected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errNotFound
	}
	return nil
}

// ============
// USERS
// ============

func (s *localStore) createUser(ctx context.Context, u user, name string) (user, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&user{}).Where("username = ?", u.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errDuplicate
		}
		if err := tx.Create(&u).Error; err != nil {
			return err
		}
		p := newProfile(u.ID, name, u.Email)
		return tx.Create(&p).Error
	})
	return u, err
}

func (s *localStore) userByUsername(ctx context.Context, username string) (user, error) {
	var u user
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	return u, notFound(err)
}

func (s *localStore) userIDByToken(ctx context.Context, token string) (int, error) {
	var u user
	err := s.db.WithContext(ctx).Select("id").Where("auth_token = ?", token).First(&u).Error
	return u.ID, notFound(err)
}

// ============
// PROFILES
// ============

func (s *localStore) getProfile(ctx context.Context, userID int) (profile, error) {
	var p profile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	return p, notFound(err)
}

// updateProfile runs inside a gorm transaction. The pool holds a single
// connection, so the transaction excludes every other query until it commits.
func (s *localStore) updateProfile(ctx context.Context, userID int, fn func(*profile) error) (profile, error) {
	var p profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&p).Error; err != nil {
			return notFound(err)
		}
		if err := fn(&p); err != nil {
			return err
		}
		if p.HealthConditions == nil {
			p.HealthConditions = []string{}
		}
		return tx.Save(&p).Error
	})
	if err != nil {
		return profile{}, err
	}
	return p, nil
}

func (s *localStore) profileByStripeCustomer(ctx context.Context, customerID string) (profile, error) {
	var p profile
	err := s.db.WithContext(ctx).Where("stripe_customer_id = ?", customerID).First(&p).Error
	return p, notFound(err)
}

// ============
// FOOD ENTRIES
// ============

func (s *localStore) listFoodEntries(ctx context.Context, userID int, start, end string) ([]foodEntry, error) {
	entries := []foodEntry{}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date, created_at, id").
		Find(&entries).Error
	return entries, err
}

func (s *localStore) createFoodEntry(ctx context.Context, e foodEntry) (foodEntry, error) {
	e.ID = 0
	err := s.db.WithContext(ctx).Create(&e).Error
	return e, err
}

func (s *localStore) updateFoodEntry(ctx context.Context, userID, id int, patch foodEntryPatch) (foodEntry, error) {
	var e foodEntry
	db := s.db.WithContext(ctx)
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&e).Error; err != nil {
		return foodEntry{}, notFound(err)
	}
	if patch.Date != nil {
		if err := e.Date.parse(*patch.Date); err != nil {
			return foodEntry{}, err
		}
	}
	if patch.MealType != nil {
		e.MealType = *patch.MealType
	}
	if patch.Name != nil {
		e.Name = *patch.Name
	}
	if patch.Calories != nil {
		e.Calories = *patch.Calories
	}
	if patch.Protein != nil {
		e.Protein = *patch.Protein
	}
	if patch.Carbs != nil {
		e.Carbs = *patch.Carbs
	}
	if patch.Fat != nil {
		e.Fat = *patch.Fat
	}
	err := db.Save(&e).Error
	return e, err
}

func (s *localStore) deleteFoodEntry(ctx context.Context, userID, id int) error {
	return affected(s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&foodEntry{}))
}

// ================
// EXERCISE ENTRIES
// ================

func (s *localStore) listExerciseEntries(ctx context.Context, userID int, start, end string) ([]exerciseEntry, error) {
	entries := []exerciseEntry{}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date, created_at, id").
		Find(&entries).Error
	return entries, err
}

func (s *localStore) createExerciseEntry(ctx context.Context, e exerciseEntry) (exerciseEntry, error) {
	e.ID = 0
	err := s.db.WithContext(ctx).Create(&e).Error
	return e, err
}

func (s *localStore) deleteExerciseEntry(ctx context.Context, userID, id int) error {
	return affected(s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&exerciseEntry{}))
}

// ==========
// WEIGHT LOG
// ==========

func (s *localStore) listWeightEntries(ctx context.Context, userID int, start, end string) ([]weightEntry, error) {
	entries := []weightEntry{}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date ASC").
		Find(&entries).Error
	return entries, err
}

func (s *localStore) upsertWeightEntry(ctx context.Context, e weightEntry) (weightEntry, error) {
	e.ID = 0
	db := s.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"weight"}),
	}).Create(&e).Error
	if err != nil {
		return weightEntry{}, err
	}
	// The conflict path does not report the existing row's ID, so read it back.
	var stored weightEntry
	err = db.Where("user_id = ? AND date = ?", e.UserID, e.Date).First(&stored).Error
	return stored, notFound(err)
}

func (s *localStore) deleteWeightEntry(ctx context.Context, userID, id int) error {
	return affected(s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&weightEntry{}))
}

func (s *localStore) latestWeightDate(ctx context.Context, userID int) (string, error) {
	var date sql.NullString
	err := s.db.WithContext(ctx).Model(&weightEntry{}).
		Where("user_id = ?", userID).
		Select("MAX(date)").
		Scan(&date).Error
	return date.String, err
}

// earliestLogDate takes the smaller of the first food and first exercise date.
// Dates are stored as YYYY-MM-DD text, so string order is date order.
func (s *localStore) earliestLogDate(ctx context.Context, userID int) (string, error) {
	earliest := ""
	for _, model := range []any{&foodEntry{}, &exerciseEntry{}} {
		var date sql.NullString
		err := s.db.WithContext(ctx).Model(model).
			Where("user_id = ?", userID).
			Select("MIN(date)").
			Scan(&date).Error
		if err != nil {
			return "", err
		}
		if date.Valid && (earliest == "" || date.String < earliest) {
			earliest = date.String
		}
	}
	return earliest, nil
}
