package domain

import "time"

// Follow represents a self-referential many-to-many relationship between two
// users. A Follow is created when one user decides to follow another user.
// The FollowerID is the ID of the user that follows, and the FollowedID is
// the ID of the user being followed. At most one edge may exist per
// (follower, followed) pair, and a user never follows themselves.
type Follow struct {
	ID         int  `json:"id"`
	FollowerID int  `json:"-" gorm:"notNull;index;uniqueIndex:idx_follow_pair"`
	Follower   User `json:"follower"`
	FollowedID int  `json:"-" gorm:"notNull;index;uniqueIndex:idx_follow_pair"`
	Followed   User `json:"followed"`

	CreatedAt time.Time `json:"created_at"`
}

// FollowService is a set of methods to manipulate and work with the Follow
// model. Follow never fails in a user-visible way: following yourself and
// following someone twice are both silent no-ops. Unfollow is the asymmetric
// one - unfollowing someone you don't follow is a not-found error.
type FollowService interface {
	Follow(follow *Follow) error
	Unfollow(follow *Follow) error
	IsFollowing(followerID, followedID int) bool
}
