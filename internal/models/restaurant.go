package models

import "time"

type SocialMedia struct {
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
	Twitter   string `json:"twitter"`
}

// Restaurant is a single-row table.
type Restaurant struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Phone        string      `json:"phone"`
	Email        string      `json:"email"`
	Address      string      `json:"address"`
	OpeningHours string      `json:"openingHours"`
	Description  string      `json:"description"`
	Logo         string      `json:"logo"`
	SocialMedia  SocialMedia `json:"socialMedia"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func DefaultRestaurant() *Restaurant {
	return &Restaurant{
		Name:         "Tasty Bites Restaurant",
		Phone:        "+91 9876543210",
		Email:        "info@tastybites.com",
		Address:      "123 Food Street, Mumbai, Maharashtra 400001",
		OpeningHours: "9:00 AM - 11:00 PM",
		Description:  "Serving delicious food since 2010",
	}
}
