package models

import (
	"time"

	"gorm.io/gorm"
)

// Room is a physical playing room the club can schedule tournaments into.
type Room struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Name     string `gorm:"uniqueIndex;not null" json:"name"`
	Location string `json:"location"`
	Capacity int    `gorm:"default:0" json:"capacity"`
	Active   bool   `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
