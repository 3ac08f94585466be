package domain

import "time"

// Comment is a remark a User leaves under a Post. Comments are immutable,
// there is no edit or delete flow for them.
type Comment struct {
	ID     int    `json:"id"`
	PostID int    `json:"post_id" gorm:"notNull;index"`
	UserID int    `json:"user_id" gorm:"notNull;index"`
	User   User   `json:"author"`
	Text   string `json:"text" gorm:"notNull"`

	CreatedAt time.Time `json:"created_at"`
}

// CommentService is a set of methods to work with the Comment model.
// ByPostID returns a post's comments in creation order, oldest first.
type CommentService interface {
	ByPostID(postID int) ([]Comment, error)
	CountByPostID(postID int) (int, error)
	Create(comment *Comment) error
}
