package person

import (
	"time"

	"github.com/google/uuid"
)

// Person is a human identity owned by at most one user. The external id is
// globally unique, generated at creation and never reused.
type Person struct {
	ID            int       `gorm:"primaryKey" json:"id"`
	ExternalID    uuid.UUID `gorm:"uniqueIndex;not null" json:"externalId"`
	FirstName     string    `gorm:"not null" json:"firstName"`
	LastName      string    `gorm:"not null" json:"lastName"`
	PreferredName *string   `json:"preferredName,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Person) TableName() string {
	return "persons"
}

type CreateRequest struct {
	FirstName     string  `json:"firstName"`
	LastName      string  `json:"lastName"`
	PreferredName *string `json:"preferredName,omitempty"`
}

type UpdateRequest struct {
	FirstName     *string `json:"firstName,omitempty"`
	LastName      *string `json:"lastName,omitempty"`
	PreferredName *string `json:"preferredName,omitempty"`
}
