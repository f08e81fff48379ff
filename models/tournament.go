package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	TournamentDraft        = "DRAFT"
	TournamentRegistration = "REGISTRATION"
	TournamentOngoing      = "ONGOING"
	TournamentCompleted    = "COMPLETED"
	TournamentCancelled    = "CANCELLED"
)

type Tournament struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	RoomID *string `gorm:"index" json:"room_id,omitempty"`

	MaxParticipants     int `gorm:"default:0" json:"max_participants"` // 0 = unlimited
	CurrentParticipants int `gorm:"default:0" json:"current_participants"`

	Status string `gorm:"type:varchar(16);default:'DRAFT'" json:"status"`

	OrganizerID string `gorm:"index;not null" json:"organizer_id"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
