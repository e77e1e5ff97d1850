package models

import (
	"errors"
	"strings"
	"time"
)

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool { return r == RoleMember || r == RoleAdmin }

type User struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Nickname     string    `json:"nickname" bson:"nickname"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         Role      `json:"role" bson:"role"`
	ProfilePic   string    `json:"profile_pic,omitempty" bson:"profile_pic,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

func (u *User) Validate() error {
	u.Name = strings.TrimSpace(u.Name)
	u.Nickname = strings.TrimSpace(u.Nickname)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Name == "" {
		return errors.New("name is required")
	}
	if len(u.Nickname) < 2 {
		return errors.New("nickname too short")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("invalid email")
	}
	if u.Role == "" {
		u.Role = RoleMember
	}
	if !u.Role.Valid() {
		return errors.New("invalid role")
	}
	return nil
}

// Summary is the projection embedded in posts, events and cotisations.
func (u User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		Name:       u.Name,
		Nickname:   u.Nickname,
		Email:      u.Email,
		ProfilePic: u.ProfilePic,
	}
}

type UserSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Nickname   string `json:"nickname"`
	Email      string `json:"email,omitempty"`
	ProfilePic string `json:"profile_pic,omitempty"`
}

// Public drops the email; posts and events only expose name, nickname and picture.
func (s UserSummary) Public() UserSummary {
	s.Email = ""
	return s
}

// Contact drops the picture; cotisations expose name, nickname and email.
func (s UserSummary) Contact() UserSummary {
	s.ProfilePic = ""
	return s
}
