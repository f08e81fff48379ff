// models/game.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// PGN result tokens as they appear in the Result tag.
const (
	ResultWhiteWins = "1-0"
	ResultBlackWins = "0-1"
	ResultDraw      = "1/2-1/2"
	ResultUnknown   = "*"
)

// Game is an uploaded chess game record. Rating updates are driven off the
// Result token when a manager approves a game with both players linked.
type Game struct {
	ID       string     `gorm:"primaryKey;type:uuid" json:"id"`
	Event    string     `json:"event"`
	Site     string     `json:"site"`
	GameDate *time.Time `json:"game_date,omitempty"`
	Round    string     `json:"round"`

	// Free-text player names from the PGN tags.
	WhitePlayer string `json:"white_player"`
	BlackPlayer string `json:"black_player"`

	// Links to club members. Both must be set for the game to be rated.
	WhitePlayerID *string `gorm:"index" json:"white_player_id,omitempty"`
	BlackPlayerID *string `gorm:"index" json:"black_player_id,omitempty"`

	Result string `gorm:"type:varchar(8)" json:"result"` // 1-0 | 0-1 | 1/2-1/2 | *
	ECO    string `gorm:"type:varchar(3)" json:"eco"`

	PGNContent string `gorm:"type:text" json:"pgn_content,omitempty"`
	S3Key      string `json:"s3_key,omitempty"`

	UploadedByID string  `gorm:"index;not null" json:"uploaded_by_id"`
	TournamentID *string `gorm:"index" json:"tournament_id,omitempty"`

	Approved bool `gorm:"not null;default:false" json:"approved"`
	// Set once rating changes for this game were committed. The ledger's
	// (game_id, player_id) unique index is the hard guarantee; this flag is
	// the cheap read path for listings.
	Rated bool `gorm:"not null;default:false" json:"rated"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
