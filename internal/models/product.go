package models

import "time"

// Product represents a product in the catalogue.
type Product struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null" validate:"required"`
	Price        float64   `json:"price" gorm:"not null" validate:"gt=0"`
	Availability bool      `json:"availability" gorm:"not null"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// ProductInput is the body accepted by create and full update.
// Availability is optional on create and defaults to true.
type ProductInput struct {
	Name         string  `json:"name" example:"Monitor"`
	Price        float64 `json:"price" example:"300"`
	Availability *bool   `json:"availability,omitempty" example:"true"`
}
