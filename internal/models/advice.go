// ABOUTME: Advice model for the admin-authored tips feed.
// ABOUTME: Includes the predefined topic list offered to authors.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Topics is the predefined list of advice topics.
var Topics = []string{"Nutrición", "Ejercicio", "Sueño", "Estrés", "Higiene", "Diabetes", "General"}

// Advice is a single entry of the tips feed.
type Advice struct {
	ID        uuid.UUID  `json:"id" yaml:"id"`
	Title     string     `json:"title" yaml:"title"`
	Body      string     `json:"body" yaml:"body"`
	Topic     string     `json:"topic" yaml:"topic"`
	Timestamp time.Time  `json:"timestamp" yaml:"timestamp"`
	ImageURL  *string    `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	AuthorID  *uuid.UUID `json:"author_id,omitempty" yaml:"author_id,omitempty"`
}

// NewAdvice creates an Advice entry authored by authorID.
func NewAdvice(authorID uuid.UUID, title, body, topic string) *Advice {
	return &Advice{
		ID:        uuid.New(),
		Title:     title,
		Body:      body,
		Topic:     topic,
		Timestamp: time.Now(),
		AuthorID:  &authorID,
	}
}

// WithImage sets the image reference.
func (a *Advice) WithImage(ref string) *Advice {
	a.ImageURL = &ref
	return a
}
