package models

import "time"

// User is an account that owns watchlist entries
type User struct {
	ID           uint64 `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	FirstName    string
	LastName     string

	// CreatedAt is written once on insert and never updated
	CreatedAt time.Time  `gorm:"<-:create"`
	LastLogin *time.Time // nil until the first successful login

	Entries []WatchlistEntry `gorm:"constraint:OnDelete:CASCADE"`
}

// TableName keeps the table name stable across gorm naming strategies
func (User) TableName() string {
	return "users"
}

// WatchlistEntry is a single title tracked by a user
type WatchlistEntry struct {
	ID      uint64 `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"not null" json:"title"`
	Type    string `json:"type"`  // free-form: movie, series, documentary, anime, ...
	Genre   string `json:"genre"` // free-form
	Watched bool   `gorm:"not null;default:false" json:"watched"`
	Rating  int    `json:"rating"` // no enforced range

	// PosterURL is nil when no poster is known. "" and "N/A" are stored as given.
	PosterURL *string `json:"posterUrl"`

	UserID uint64 `gorm:"not null;index" json:"userId"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName keeps the table name stable across gorm naming strategies
func (WatchlistEntry) TableName() string {
	return "watchlist"
}

// MissingPoster reports whether enrichment should look a poster up
func (e *WatchlistEntry) MissingPoster() bool {
	return e.PosterURL == nil || *e.PosterURL == ""
}

// UserView is the public representation of a user. It never carries the password.
type UserView struct {
	ID        uint64  `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	CreatedAt string  `json:"createdAt"`
	LastLogin *string `json:"lastLogin"`
}

// View converts a user into its public representation
func (u *User) View() UserView {
	view := UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
	if u.LastLogin != nil {
		lastLogin := u.LastLogin.Format(time.RFC3339)
		view.LastLogin = &lastLogin
	}
	return view
}
