package models

import "time"

const (
	PuzzleEasy   = "easy"
	PuzzleMedium = "medium"
	PuzzleHard   = "hard"
)

// DailyPuzzle holds a tactics position. PuzzleDate is nil until the puzzle
// is scheduled for a day; the puzzle scheduler assigns dates (one puzzle per
// day, enforced by the unique index).
type DailyPuzzle struct {
	ID         string     `gorm:"primaryKey;type:uuid" json:"id"`
	PuzzleDate *time.Time `gorm:"uniqueIndex;type:date" json:"puzzle_date,omitempty"`

	FENPosition string `gorm:"not null" json:"fen_position"`
	Solution    string `gorm:"not null" json:"solution"` // space-separated SAN moves
	MovesCount  int    `gorm:"default:1" json:"moves_count"`
	Hint        string `json:"hint,omitempty"`
	Difficulty  string `gorm:"type:varchar(8);default:'medium'" json:"difficulty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
