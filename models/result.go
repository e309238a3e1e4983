package models

// Result — выступление райдера на событии. Пара (event_id, rider_id)
// уникальна. Points либо считаются системой по таблице очков, либо
// переопределяются администратором.
type Result struct {
	ID            int     `json:"id" db:"id"`
	EventID       int     `json:"event_id" db:"event_id"`
	RiderID       int     `json:"rider_id" db:"rider_id"`
	Place         *int    `json:"place,omitempty" db:"place"`
	IsFinalist    bool    `json:"is_finalist" db:"is_finalist"`
	IsParticipant bool    `json:"is_participant" db:"is_participant"`
	Points        int     `json:"points" db:"points"`
	Comment       *string `json:"comment,omitempty" db:"comment"`
}

// EventResult is a result joined with rider fields for the public event page.
type EventResult struct {
	RiderID       int     `json:"rider_id"`
	Nickname      string  `json:"nickname"`
	City          *string `json:"city,omitempty"`
	RiderLevel    *string `json:"rider_level,omitempty"`
	Place         *int    `json:"place,omitempty"`
	IsFinalist    bool    `json:"is_finalist"`
	IsParticipant bool    `json:"is_participant"`
	Points        int     `json:"points"`
}
