package entities

import "time"

// Book is the persisted unit representing one uploaded PDF and its
// reading state. The whole library is stored as a single ordered JSON
// array under one key/value entry, so every field must round-trip
// losslessly through encoding/json. Optional fields are pointers so
// absence survives serialization instead of collapsing to zero values.
type Book struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Author      *string    `json:"author,omitempty"`
	CoverURL    *string    `json:"cover_url,omitempty"`
	Content     string     `json:"content"` // data:application/pdf;base64,... payload, immutable after creation
	CurrentPage int        `json:"current_page"`
	TotalPages  int        `json:"total_pages"`
	LastRead    *time.Time `json:"last_read,omitempty"`
	UploadedAt  time.Time  `json:"uploaded_at"`
}

// AuthorName returns the author or an empty string when absent.
func (b *Book) AuthorName() string {
	if b.Author == nil {
		return ""
	}
	return *b.Author
}
