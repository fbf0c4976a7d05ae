package domain

import "time"

// Asset is a ledger entry for an object uploaded through the storage service.
type Asset struct {
	ID          int64     `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Kind        string    `json:"kind" db:"kind"`
	Key         string    `json:"key" db:"object_key"`
	URL         string    `json:"url" db:"url"`
	Size        int64     `json:"size" db:"size"`
	ContentType string    `json:"content_type" db:"content_type"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
