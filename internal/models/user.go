package models

import "time"

type User struct {
	Username       string     `json:"username" db:"username"`
	HashedPassword string     `json:"-" db:"password"`
	FirstName      string     `json:"firstName" db:"first_name"`
	LastName       string     `json:"lastName" db:"last_name"`
	Phone          string     `json:"phone" db:"phone"`
	JoinAt         time.Time  `json:"joinAt" db:"join_at"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
}

// UserSummary is the public slice of a user embedded in message reads.
type UserSummary struct {
	Username  string `json:"username" db:"username"`
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`
	Phone     string `json:"phone" db:"phone"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}
