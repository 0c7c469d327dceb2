package model

import (
	"time"
)

type Image struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	Filename     string    `db:"filename"`
	OriginalName string    `db:"original_name"`
	MimeType     string    `db:"mime_type"`
	Size         int64     `db:"size"`
	StoragePath  string    `db:"storage_path"`
	CreatedAt    time.Time `db:"created_at"`
}

// ImageView is the client-facing shape; URL is resolved from storage at
// read time and never persisted.
type ImageView struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	OriginalName string    `json:"name"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"createdAt"`
}
