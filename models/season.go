package models

import "time"

// SeasonPoints — кэш сезонных очков, одна строка на райдера. Таблица целиком
// принадлежит агрегатору: при пересчёте очищается и наполняется заново,
// частично никогда не правится.
type SeasonPoints struct {
	RiderID   int       `json:"rider_id" db:"rider_id"`
	Points    int       `json:"season_points" db:"season_points"`
	UpdatedAt time.Time `json:"season_updated_at" db:"season_updated_at"`
}

// RiderPointsTotal is one row of the windowed aggregation: a rider and their
// uncapped points sum.
type RiderPointsTotal struct {
	RiderID int
	Total   int
}

// RatingItem — строка публичного рейтинга. Age вычисляется из birthdate на
// момент запроса; при отсутствии даты рождения остаётся nil.
type RatingItem struct {
	ID           int        `json:"id"`
	Nickname     string     `json:"nickname"`
	Fullname     *string    `json:"fullname,omitempty"`
	City         *string    `json:"city,omitempty"`
	Birthdate    *time.Time `json:"birthdate,omitempty"`
	Age          *int       `json:"age"`
	Style        *string    `json:"style,omitempty"`
	Level        *string    `json:"level,omitempty"`
	SeasonPoints int        `json:"season_points"`
}

// RiderSeasonResult is one line of a rider's recent results on their public
// profile page.
type RiderSeasonResult struct {
	EventID       int       `json:"event_id"`
	EventName     string    `json:"event_name"`
	EventCity     *string   `json:"event_city,omitempty"`
	EventLevel    string    `json:"event_level"`
	EventDate     time.Time `json:"event_date"`
	Place         *int      `json:"place,omitempty"`
	IsFinalist    bool      `json:"is_finalist"`
	IsParticipant bool      `json:"is_participant"`
	Points        int       `json:"points"`
}

// RiderProfile is the public rider page payload.
type RiderProfile struct {
	Rider         RatingItem          `json:"rider"`
	SeasonResults []RiderSeasonResult `json:"season_results"`
}
