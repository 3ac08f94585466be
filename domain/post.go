package domain

import "time"

// Post is a piece of writing published by a User. The author is set once at
// creation and never reassigned. A Post may optionally sit in a Group and
// carry a single image.
type Post struct {
	ID     int    `json:"id"`
	UserID int    `json:"user_id" gorm:"notNull;index"`
	User   User   `json:"author"`
	Text   string `json:"text" gorm:"notNull"`

	GroupID *int   `json:"group_id,omitempty" gorm:"index"`
	Group   *Group `json:"group,omitempty"`

	Image string `json:"image,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostService is a set of methods to manipulate and work with the Post model.
// Update only ever touches the mutable fields (text, group, image) - the
// author stays fixed. Delete takes the Post's Comments with it.
type PostService interface {
	ByID(id int) (*Post, error)
	CountByUserID(userID int) (int, error)
	Create(post *Post) error
	Update(post *Post) error
	Delete(post *Post) error
}

// CanEditPost decides whether the given user may edit the given post.
// Only the post's author may, nobody else. It deliberately takes the acting
// user as a possibly-nil pointer, so handlers can call it straight with
// whatever the auth context holds.
func CanEditPost(user *User, post *Post) bool {
	if user == nil || post == nil {
		return false
	}
	return user.ID == post.UserID
}
