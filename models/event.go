package models

import "time"

// EventLevel представляет уровни соревнований, соответствующие CHECK в БД.
type EventLevel string

const (
	LevelLocal         EventLevel = "local"
	LevelRegional      EventLevel = "regional"
	LevelNational      EventLevel = "national"
	LevelInternational EventLevel = "international"
)

func (l EventLevel) Valid() bool {
	switch l {
	case LevelLocal, LevelRegional, LevelNational, LevelInternational:
		return true
	}
	return false
}

// EventStatus представляет статусы события.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
)

func (s EventStatus) Valid() bool {
	return s == EventStatusDraft || s == EventStatusPublished
}

// Event — соревнование. Публично видны только события со статусом published.
type Event struct {
	ID                int         `json:"id" db:"id"`
	Name              string      `json:"name" db:"name"`
	DateStart         time.Time   `json:"date_start" db:"date_start"`
	DateEnd           *time.Time  `json:"date_end,omitempty" db:"date_end"`
	City              *string     `json:"city,omitempty" db:"city"`
	Level             EventLevel  `json:"level" db:"level"`
	ParticipantsCount *int        `json:"participants_count,omitempty" db:"participants_count"`
	Style             *string     `json:"style,omitempty" db:"style"`
	HasBestTrick      bool        `json:"has_best_trick" db:"has_best_trick"`
	SourceURL         *string     `json:"source_url,omitempty" db:"source_url"`
	OrganizerContact  *string     `json:"organizer_contact,omitempty" db:"organizer_contact"`
	Status            EventStatus `json:"status" db:"status"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at" db:"updated_at"`
}
