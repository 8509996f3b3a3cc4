package models

import "time"

// Brand is a product manufacturer.
type Brand struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"uniqueIndex;type:varchar(255);not null"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;type:varchar(255);not null"`
	Image     string    `json:"image,omitempty" gorm:"type:varchar(2048)"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Category groups products; a product may belong to many categories.
type Category struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"uniqueIndex;type:varchar(255);not null"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;type:varchar(255);not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
