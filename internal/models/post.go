package models

import (
	"errors"
	"strings"
	"time"
)

type PostCategory string

const (
	CategoryNews         PostCategory = "news"
	CategoryAnnouncement PostCategory = "announcement"
)

func (c PostCategory) Valid() bool { return c == CategoryNews || c == CategoryAnnouncement }

type Post struct {
	ID        string       `json:"id" bson:"_id"`
	Title     string       `json:"title" bson:"title"`
	Content   string       `json:"content" bson:"content"`
	Image     string       `json:"image,omitempty" bson:"image,omitempty"`
	Category  PostCategory `json:"category" bson:"category"`
	AuthorID  string       `json:"author_id" bson:"author_id"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" bson:"updated_at"`
}

func (p *Post) Validate() error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(p.Content) == "" {
		return errors.New("content is required")
	}
	if p.Category == "" {
		p.Category = CategoryNews
	}
	if !p.Category.Valid() {
		return errors.New(`category must be "news" or "announcement"`)
	}
	return nil
}
