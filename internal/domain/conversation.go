package domain

import "time"

// Conversation is a single chat thread shown in the sidebar.
type Conversation struct {
	ID        string    `json:"id" gorm:"primarykey"`
	Title     string    `json:"title" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
