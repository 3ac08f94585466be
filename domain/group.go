package domain

import "time"

// Group is a named collection of Posts. Membership is optional, a Post may
// belong to no Group at all. Groups are set up by administrators and are
// never deleted by normal user flows.
type Group struct {
	ID          int    `json:"id"`
	Slug        string `json:"slug" gorm:"notNull;uniqueIndex"`
	Title       string `json:"title" gorm:"notNull"`
	Description string `json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GroupService is a set of methods to manipulate and work with the Group model.
// Deleting a Group must not delete its Posts, it only clears their group
// reference.
type GroupService interface {
	ByID(id int) (*Group, error)
	BySlug(slug string) (*Group, error)
	Create(group *Group) error
	Update(group *Group) error
	Delete(group *Group) error
}
