package models

import (
	"time"

	"github.com/noah-isme/phonebook-api/pkg/zodiac"
)

// Contact is a phone book entry.
type Contact struct {
	ID        int64      `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Email     string     `db:"email" json:"email"`
	BirthDay  *time.Time `db:"birth_day" json:"birth_day,omitempty"`
	Phone     *string    `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// ContactView is a contact as shown in the grid, with derived display columns.
type ContactView struct {
	Contact
	ZodiacSign zodiac.Sign `json:"zodiac_sign"`
	Details    string      `json:"details"`
}

// ContactPage is one page of contacts together with the total row count.
type ContactPage struct {
	Contacts []Contact `json:"contacts"`
	Total    int       `json:"total"`
}
