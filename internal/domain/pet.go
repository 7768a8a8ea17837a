package domain

import "time"

// Pet is an animal listed for adoption. OwnerID is set once the pet is adopted.
type Pet struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Species   string     `json:"species"`
	Age       int        `json:"age"`
	Adopted   bool       `json:"adopted"`
	OwnerID   *string    `json:"ownerId,omitempty"`
	AdoptedAt *time.Time `json:"adoptedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
