package models

import (
	"errors"
	"slices"
	"strings"
	"time"
)

type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventOngoing   EventStatus = "ongoing"
	EventFinished  EventStatus = "finished"
	EventCancelled EventStatus = "cancelled"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventUpcoming, EventOngoing, EventFinished, EventCancelled:
		return true
	}
	return false
}

// Joinable reports whether members may still join an event in this status.
func (s EventStatus) Joinable() bool { return s == EventUpcoming || s == EventOngoing }

// JoinableStatuses lists the statuses accepted by a join, for store-side filters.
var JoinableStatuses = []EventStatus{EventUpcoming, EventOngoing}

type Event struct {
	ID              string      `json:"id" bson:"_id"`
	Title           string      `json:"title" bson:"title"`
	Description     string      `json:"description" bson:"description"`
	Date            time.Time   `json:"date" bson:"date"`
	Time            string      `json:"time,omitempty" bson:"time,omitempty"`
	Location        string      `json:"location" bson:"location"`
	Image           string      `json:"image,omitempty" bson:"image,omitempty"`
	MaxParticipants *int        `json:"max_participants,omitempty" bson:"max_participants"`
	Status          EventStatus `json:"status" bson:"status"`
	OrganizerID     string      `json:"organizer_id" bson:"organizer_id"`
	ParticipantIDs  []string    `json:"participant_ids" bson:"participant_ids"`
	CreatedAt       time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" bson:"updated_at"`
}

func (e *Event) Validate() error {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(e.Description) == "" {
		return errors.New("description is required")
	}
	if e.Date.IsZero() {
		return errors.New("date is required")
	}
	if strings.TrimSpace(e.Location) == "" {
		return errors.New("location is required")
	}
	if e.Status == "" {
		e.Status = EventUpcoming
	}
	if !e.Status.Valid() {
		return errors.New("invalid status")
	}
	if e.MaxParticipants != nil {
		if *e.MaxParticipants < 1 {
			return errors.New("max_participants must be >= 1")
		}
		if len(e.ParticipantIDs) > *e.MaxParticipants {
			return errors.New("max_participants is below the current number of participants")
		}
	}
	return nil
}

func (e Event) HasParticipant(userID string) bool {
	return slices.Contains(e.ParticipantIDs, userID)
}

// IsFull is false for events without a participant bound.
func (e Event) IsFull() bool {
	return e.MaxParticipants != nil && len(e.ParticipantIDs) >= *e.MaxParticipants
}
