package profile

import (
	"time"
)

// Context scopes which presentation of a person applies in a situation.
type Context string

const (
	ContextLegal  Context = "Legal"
	ContextSocial Context = "Social"
	ContextWork   Context = "Work"
	ContextGaming Context = "Gaming"
	ContextOther  Context = "Other"
)

// IdentityProfile is a named, context-scoped presentation of a person.
// For a given (person, context) pair at most one profile may carry the
// default flag; the swap in the repository is the only place that flag
// changes across rows.
type IdentityProfile struct {
	ID          int     `gorm:"primaryKey" json:"id"`
	PersonID    int     `gorm:"not null;index" json:"personId"`
	DisplayName string  `gorm:"not null" json:"displayName"`
	Context     Context `gorm:"not null" json:"context"`

	BirthDate *time.Time `json:"birthDate,omitempty"`
	Title     *string    `json:"title,omitempty"`
	Email     *string    `json:"email,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	Address   *string    `json:"address,omitempty"`

	IsDefaultForContext bool      `gorm:"not null;default:false" json:"isDefaultForContext"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func (IdentityProfile) TableName() string {
	return "identity_profiles"
}

type CreateRequest struct {
	DisplayName string     `json:"displayName"`
	Context     Context    `json:"context"`
	BirthDate   *time.Time `json:"birthDate,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Email       *string    `json:"email,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Address     *string    `json:"address,omitempty"`
}

type UpdateRequest struct {
	DisplayName *string    `json:"displayName,omitempty"`
	BirthDate   *time.Time `json:"birthDate,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Email       *string    `json:"email,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Address     *string    `json:"address,omitempty"`
}
