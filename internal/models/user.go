package models

import "time"

type User struct {
	ID            int64     `json:"id"`
	Fullname      string    `json:"fullname"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"` // не отдаём наружу
	Role          string    `json:"role"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	Avatar        string    `json:"avatar"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// ProfileUpdate holds the user-editable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Fullname *string `json:"fullname"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Avatar   *string `json:"avatar"`
}
