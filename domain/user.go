package domain

import "time"

// User represents a registered author. Besides owning Posts and Comments,
// a User may follow other Users and be followed by them.
// The Password and Remember fields only carry data in transit, they are
// never stored. Only their hashed counterparts go into the database.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username" gorm:"notNull;uniqueIndex"`
	Email    string `json:"email" gorm:"notNull;uniqueIndex"`

	Password     string `json:"password,omitempty" gorm:"-"`
	PasswordHash string `json:"-" gorm:"notNull"`
	Remember     string `json:"-" gorm:"-"`
	RememberHash string `json:"-" gorm:"notNull;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserService is a set of methods to manipulate and work with the User model.
// It also covers authentication, since that is mostly a database lookup with
// some hashing on top.
type UserService interface {
	ByID(id int) (*User, error)
	ByUsername(username string) (*User, error)
	ByRemember(token string) (*User, error)
	Authenticate(username, password string) (*User, error)
	Create(user *User) error
	Update(user *User) error
	Delete(user *User) error
}
