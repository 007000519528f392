package models

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// User operations

// CreateUser inserts a new user. CreatedAt is set here and never changed afterwards.
func (db *Database) CreateUser(ctx context.Context, user *User) error {
	user.CreatedAt = time.Now()
	user.LastLogin = nil

	err := db.gorm.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a race against a concurrent registration; report which key collided
		taken, checkErr := db.UsernameExists(ctx, user.Username)
		if checkErr == nil && taken {
			return ErrDuplicateUsername
		}
		return ErrDuplicateEmail
	}
	return err
}

// GetUserByID retrieves a user by ID
func (db *Database) GetUserByID(ctx context.Context, id uint64) (*User, error) {
	var user User
	err := db.gorm.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username (case-sensitive)
func (db *Database) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := db.gorm.WithContext(ctx).First(&user, "username = ?", username).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// UsernameExists reports whether the username is taken
func (db *Database) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := db.gorm.WithContext(ctx).Model(&User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// EmailExists reports whether the email is registered
func (db *Database) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := db.gorm.WithContext(ctx).Model(&User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// UpdateUserProfile overwrites the profile fields of a user
func (db *Database) UpdateUserProfile(ctx context.Context, id uint64, firstName, lastName, email string) error {
	result := db.gorm.WithContext(ctx).Model(&User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"first_name": firstName,
			"last_name":  lastName,
			"email":      email,
		})
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLastLogin records a successful login
func (db *Database) TouchLastLogin(ctx context.Context, id uint64, at time.Time) error {
	result := db.gorm.WithContext(ctx).Model(&User{}).
		Where("id = ?", id).
		Update("last_login", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes a user and every watchlist entry it owns.
// Returns false if the user did not exist.
func (db *Database) DeleteUser(ctx context.Context, id uint64) (bool, error) {
	var deleted bool
	err := db.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&WatchlistEntry{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&User{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// ListUserIDs returns the IDs of all users
func (db *Database) ListUserIDs(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	err := db.gorm.WithContext(ctx).Model(&User{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}
