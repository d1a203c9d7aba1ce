package models

import "time"

type User struct {
	ID        string    `json:"id"`
	Username  *string   `json:"username"`
	AvatarURL *string   `json:"avatar_url"`
	Bans      []string  `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
