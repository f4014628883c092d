package store

import "time"

type Session struct {
	ID        string    `json:"id"`    // UUID
	Title     *string   `json:"title"` // Nullable
	CreatedAt time.Time `json:"created_at"`
}
