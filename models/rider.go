package models

import "time"

// Rider представляет райдера. Birthdate хранится как дата, возраст всегда
// вычисляется на лету и в БД не попадает.
type Rider struct {
	ID          int        `json:"id" db:"id"`
	Nickname    string     `json:"nickname" db:"nickname"`
	Fullname    *string    `json:"fullname,omitempty" db:"fullname"`
	City        *string    `json:"city,omitempty" db:"city"`
	Birthdate   *time.Time `json:"birthdate,omitempty" db:"birthdate"`
	Style       *string    `json:"style,omitempty" db:"style"`
	Level       *string    `json:"level,omitempty" db:"level"`
	PhotoKey    *string    `json:"-" db:"photo_key"`
	PhotoURL    *string    `json:"photo_url,omitempty" db:"-"`
	Email       *string    `json:"email,omitempty" db:"email"`
	SocialsJSON *string    `json:"socials_json,omitempty" db:"socials_json"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
