package models

import "time"

// RatingHistory is one entry of the append-only rating ledger: a single
// player's rating transition for a single game (GameID nil for manual
// adjustments). Rows are only ever inserted; no code path updates or
// deletes them. The (game_id, player_id) unique index makes reprocessing
// a completed game fail instead of double-applying its rating changes.
type RatingHistory struct {
	ID           string  `gorm:"primaryKey;type:uuid" json:"id"`
	PlayerID     string  `gorm:"index;not null;uniqueIndex:ux_rating_history_game_player,priority:2" json:"player_id"`
	OldRating    int     `gorm:"not null" json:"old_rating"`
	NewRating    int     `gorm:"not null" json:"new_rating"`
	RatingChange int     `gorm:"not null" json:"rating_change"` // always NewRating - OldRating
	KFactor      int     `gorm:"not null" json:"k_factor"`
	GameID       *string `gorm:"uniqueIndex:ux_rating_history_game_player,priority:1" json:"game_id,omitempty"`

	ChangedAt time.Time `gorm:"autoCreateTime;index" json:"changed_at"`
}
