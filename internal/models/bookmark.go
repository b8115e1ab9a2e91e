package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	BookmarkStatusActive   = "active"
	BookmarkStatusArchived = "archived"

	AccessLevelPrivate = "private"
	AccessLevelPublic  = "public"
)

// InitialSyncVersion is the version a bookmark row carries before its
// first update. Every accepted mutation advances it by exactly 1.
const InitialSyncVersion = 0

type Bookmark struct {
	ID          uuid.UUID `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Status      string    `json:"status"`
	AccessLevel string    `json:"access_level"`
	OwnerID     uuid.UUID `json:"owner_id"`
	SyncVersion int64     `json:"sync_version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ValidAccessLevel(level string) bool {
	return level == AccessLevelPrivate || level == AccessLevelPublic
}

func ValidBookmarkStatus(status string) bool {
	return status == BookmarkStatusActive || status == BookmarkStatusArchived
}
