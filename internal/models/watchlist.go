package models

import (
	"context"
)

// Watchlist operations. Everything that reads or mutates a single entry is
// scoped by (id, user_id) in one statement, so an entry owned by someone else
// behaves exactly like a missing one.

// CreateEntry inserts a new watchlist entry
func (db *Database) CreateEntry(ctx context.Context, entry *WatchlistEntry) error {
	return db.gorm.WithContext(ctx).Create(entry).Error
}

// GetAllEntries retrieves every entry regardless of owner
func (db *Database) GetAllEntries(ctx context.Context) ([]WatchlistEntry, error) {
	entries := []WatchlistEntry{}
	err := db.gorm.WithContext(ctx).Order("id").Find(&entries).Error
	return entries, err
}

// GetEntriesByUser retrieves the entries owned by a user
func (db *Database) GetEntriesByUser(ctx context.Context, userID uint64) ([]WatchlistEntry, error) {
	entries := []WatchlistEntry{}
	err := db.gorm.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&entries).Error
	return entries, err
}

// GetEntryForUser retrieves an entry if it is owned by the user
func (db *Database) GetEntryForUser(ctx context.Context, id, userID uint64) (*WatchlistEntry, error) {
	var entry WatchlistEntry
	err := db.gorm.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&entry).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &entry, nil
}

// UpdateEntryForUser writes every mutable field of the entry, conditioned on
// entry.ID and entry.UserID. Returns ErrNotFound when no owned row matched.
func (db *Database) UpdateEntryForUser(ctx context.Context, entry *WatchlistEntry) error {
	result := db.gorm.WithContext(ctx).Model(&WatchlistEntry{}).
		Where("id = ? AND user_id = ?", entry.ID, entry.UserID).
		Updates(map[string]interface{}{
			"title":      entry.Title,
			"type":       entry.Type,
			"genre":      entry.Genre,
			"watched":    entry.Watched,
			"rating":     entry.Rating,
			"poster_url": entry.PosterURL,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPosterForUser overwrites only the poster URL of an owned entry
func (db *Database) SetPosterForUser(ctx context.Context, id, userID uint64, posterURL *string) error {
	result := db.gorm.WithContext(ctx).Model(&WatchlistEntry{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("poster_url", posterURL)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEntryForUser deletes an owned entry. Returns false if nothing matched.
func (db *Database) DeleteEntryForUser(ctx context.Context, id, userID uint64) (bool, error) {
	result := db.gorm.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&WatchlistEntry{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
