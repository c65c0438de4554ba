package models

import "time"

type Post struct {
	ID        string    `json:"id" db:"id"`
	CreatorID string    `json:"creatorId" db:"creator_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	MediaURL  *string   `json:"mediaUrl" db:"media_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
