// internal/database/models.go
package database

import (
	"time"
)

type User struct {
	ID        string
	Email     string
	Name      *string
	AvatarUrl *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Account struct {
	ID                int64
	UserID            string
	Provider          string
	ProviderAccountID string
	AccessToken       *string
	TokenType         *string
	Scope             *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Note struct {
	ID        int64
	UserID    string
	Title     string
	Content   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type UserSetting struct {
	UserID       string
	WeatherCity  *string
	WeatherUnits string
	UpdatedAt    time.Time
}
