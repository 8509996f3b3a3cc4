package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// Role names carried in user records and token payloads.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Roles is a list of role names persisted as a JSON array.
type Roles []string

// Value implements driver.Valuer.
func (r Roles) Value() (driver.Value, error) {
	if r == nil {
		r = Roles{}
	}
	b, err := json.Marshal([]string(r))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (r *Roles) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*r = Roles{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("roles: unsupported source type %T", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("roles: %w", err)
	}
	*r = out
	return nil
}

// Has reports whether role is in the list.
func (r Roles) Has(role string) bool {
	return slices.Contains(r, role)
}

// User represents a registered account.
type User struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username       string    `json:"username" gorm:"uniqueIndex;type:varchar(100);not null"`
	Email          string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password       string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	Roles          Roles     `json:"roles" gorm:"type:text;not null"`
	IsActive       bool      `json:"isActive" gorm:"not null;default:false"`
	ActivationCode string    `json:"-" gorm:"type:varchar(64);index"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
