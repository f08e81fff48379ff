package models

import (
	"time"

	"gorm.io/gorm"
)

type Post struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	Title   string `gorm:"not null" json:"title"`
	Slug    string `gorm:"uniqueIndex;not null" json:"slug"`
	Content string `gorm:"type:text" json:"content"`

	AuthorID string `gorm:"index;not null" json:"author_id"`

	Pinned bool `gorm:"not null;default:false" json:"pinned"`
	Locked bool `gorm:"not null;default:false" json:"locked"`

	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:PostID"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

type Comment struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	PostID   string `gorm:"index;not null" json:"post_id"`
	AuthorID string `gorm:"index;not null" json:"author_id"`
	Content  string `gorm:"type:text;not null" json:"content"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
