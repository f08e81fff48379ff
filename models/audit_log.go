package models

import "time"

// Audit action types. Stored as plain strings so new types never need a
// migration.
const (
	ActionRatingUpdate      = "RATING_UPDATE"
	ActionMemberAdded       = "MEMBER_ADDED"
	ActionMemberRemoved     = "MEMBER_REMOVED"
	ActionTournamentCreated = "TOURNAMENT_CREATED"
	ActionTournamentUpdated = "TOURNAMENT_UPDATED"
	ActionGameApproved      = "GAME_APPROVED"
	ActionRoleChanged       = "ROLE_CHANGED"
)

// AuditLog is a human-readable trail entry. Best-effort: writers must never
// fail their caller because an audit insert failed.
type AuditLog struct {
	ID         string  `gorm:"primaryKey;type:uuid" json:"id"`
	ActionType string  `gorm:"index;not null;type:varchar(32)" json:"action_type"`
	UserID     *string `gorm:"index" json:"user_id,omitempty"`
	Details    string  `gorm:"type:text" json:"details"`
	IPAddress  string  `json:"ip_address"`

	Timestamp time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}
