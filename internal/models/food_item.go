package models

import "time"

type FoodItem struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	IsAvailable bool      `json:"isAvailable"`
	Image       string    `json:"image"`
	Ingredients []string  `json:"ingredients"`
	Popular     bool      `json:"popular"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type FoodItemFilter struct {
	Category  string
	Available *bool
	Search    string
}
