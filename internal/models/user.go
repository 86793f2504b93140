package models

import "time"

type User struct {
	ID           string    `bson:"_id" json:"id"`
	Username     string    `bson:"username,omitempty" json:"username,omitempty"`
	Email        string    `bson:"email,omitempty" json:"email,omitempty"`
	PasswordHash string    `bson:"passwordHash,omitempty" json:"-"`
	GoogleID     string    `bson:"googleId,omitempty" json:"-"`
	Picture      string    `bson:"picture,omitempty" json:"picture,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"created_at"`
}

// DisplayName is what the views greet the user with.
func (u User) DisplayName() string {
	switch {
	case u.Username != "":
		return u.Username
	case u.Email != "":
		return u.Email
	default:
		return "friend"
	}
}

// GoogleProfile is the subset of the Google userinfo payload kept on a user.
type GoogleProfile struct {
	ID      string
	Email   string
	Picture string
}
