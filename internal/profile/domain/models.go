package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Role describes how a profile participates in holiday matching.
type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
	RoleBoth  Role = "both"
)

func (r Role) Valid() bool {
	switch r {
	case RoleHost, RoleGuest, RoleBoth:
		return true
	}
	return false
}

// Profile is the public-facing directory entry for a user. Exactly one
// profile exists per auth user; the user id doubles as the primary key.
type Profile struct {
	UserID         snowflake.ID                `gorm:"column:id;primaryKey" json:"user_id"`
	Username       string                      `gorm:"not null;uniqueIndex" json:"username"`
	DisplayName    string                      `gorm:"not null" json:"display_name"`
	Role           Role                        `gorm:"not null" json:"role"`
	AvailableDates datatypes.JSONSlice[string] `gorm:"not null" json:"available_dates"`
	Headline       string                      `json:"headline,omitempty"`
	Bio            string                      `json:"bio,omitempty"`
	City           string                      `json:"city,omitempty"`
	PhotoURL       string                      `json:"photo_url,omitempty"`
	Visible        bool                        `gorm:"not null;default:true" json:"visible"`
	Verified       bool                        `gorm:"not null;default:false" json:"verified"`
	CreatedAt      time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// HostsOn reports whether the profile offers (or accepts) the given
// holiday date code.
func (p *Profile) HostsOn(code string) bool {
	for _, d := range p.AvailableDates {
		if d == code {
			return true
		}
	}
	return false
}
