package models

import "time"

// College is one education slot on a profile. Profiles carry up to three.
type College struct {
	Name   string `json:"name"`
	Degree string `json:"degree"`
	Logo   string `json:"logo"`
}

// Experience is one work-history slot on a profile. Profiles carry up to four.
type Experience struct {
	Company string `json:"company"`
	Role    string `json:"role"`
	Logo    string `json:"logo"`
}

const (
	MaxColleges    = 3
	MaxExperiences = 4
)

// Profile is one alumni directory entry. Rating is owned by the rating
// engine and is never written outside its transaction.
type Profile struct {
	ID          string                     `json:"id"`
	Name        string                     `json:"name"`
	Location    string                     `json:"location,omitempty"`
	PictureURL  string                     `json:"picture_url,omitempty"`
	HighSchool  string                     `json:"high_school"`
	ClassOf     string                     `json:"class_of"`
	Colleges    [MaxColleges]College       `json:"colleges"`
	Experiences [MaxExperiences]Experience `json:"experiences"`
	LinkedInURL string                     `json:"linkedin_url,omitempty"`
	Email       string                     `json:"email,omitempty"`
	Phone       string                     `json:"phone,omitempty"`
	Rating      int                        `json:"rating"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// RedactContacts clears the access-gated fields for unauthenticated callers.
func (p *Profile) RedactContacts() {
	p.Email = ""
	p.Phone = ""
}

// ProfileFilter narrows directory listings.
type ProfileFilter struct {
	ClassOf string
	College string
	Company string
	Limit   int
	Offset  int
}

// DefaultRating is assigned to every imported profile.
const DefaultRating = 1000
