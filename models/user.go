package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	RoleMember  = "MEMBER"
	RoleManager = "MANAGER"
	RoleAdmin   = "ADMIN"
)

// User is a club member. Rating and GamesPlayed are mutated only by the
// rating service (services/elo.go); everything else is ordinary profile CRUD.
type User struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	FullName     string `json:"full_name"`

	// Comma-separated role names (MEMBER, MANAGER, ADMIN).
	Roles string `gorm:"default:'MEMBER'" json:"roles"`

	Rating      int `gorm:"not null;default:1200" json:"rating"`
	GamesPlayed int `gorm:"not null;default:0" json:"games_played"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// HasRole reports whether the user carries the given role name.
func (u *User) HasRole(role string) bool {
	for _, r := range strings.Split(u.Roles, ",") {
		if strings.TrimSpace(r) == role {
			return true
		}
	}
	return false
}
