// internal/model/donor.go
package model

import "time"

type BloodGroup string

const (
	BloodGroupAPos  BloodGroup = "A+"
	BloodGroupANeg  BloodGroup = "A-"
	BloodGroupBPos  BloodGroup = "B+"
	BloodGroupBNeg  BloodGroup = "B-"
	BloodGroupABPos BloodGroup = "AB+"
	BloodGroupABNeg BloodGroup = "AB-"
	BloodGroupOPos  BloodGroup = "O+"
	BloodGroupONeg  BloodGroup = "O-"
)

// BloodGroups lists every accepted blood group in display order.
var BloodGroups = []BloodGroup{
	BloodGroupAPos, BloodGroupANeg,
	BloodGroupBPos, BloodGroupBNeg,
	BloodGroupABPos, BloodGroupABNeg,
	BloodGroupOPos, BloodGroupONeg,
}

func (g BloodGroup) IsValid() bool {
	for _, bg := range BloodGroups {
		if bg == g {
			return true
		}
	}
	return false
}

type Donor struct {
	ID            string     `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	BloodGroup    BloodGroup `db:"blood_group" json:"blood_group"`
	City          string     `db:"city" json:"city"`
	Phone         string     `db:"phone" json:"phone"`
	Email         string     `db:"email" json:"email"`
	DonationCount int        `db:"donation_count" json:"donation_count"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// DonorFilter narrows the directory listing. An empty field matches everything.
type DonorFilter struct {
	BloodGroup string `json:"blood_group,omitempty"`
	City       string `json:"city,omitempty"`
}

// Normalized maps the "all groups" sentinels the directory UI sends to an empty filter.
func (f DonorFilter) Normalized() DonorFilter {
	switch f.BloodGroup {
	case "_all", "all", "ALL":
		f.BloodGroup = ""
	}
	return f
}
