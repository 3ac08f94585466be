package database

import (
	"gorm.io/gorm"

	"blognest/domain"
	"blognest/errs"
)

// FollowService manages Follow edges between users.
// It implements the domain.FollowService interface.
type FollowService struct {
	followValidator
}

// followValidator runs validations on incoming Follow data.
// On success, it passes the data on to followGorm.
// Otherwise, it returns the error of the validation that has failed.
type followValidator struct {
	followGorm
}

// followGorm runs CRUD operations on the database using incoming Follow data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type followGorm struct {
	db *gorm.DB
}

// NewFollowService returns an instance of FollowService.
func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{
		followValidator{
			followGorm{
				db: db,
			},
		},
	}
}

// Ensure the FollowService struct properly implements the
// domain.FollowService interface. If it does not, then this expression
// becomes invalid and won't compile.
var _ domain.FollowService = &FollowService{}

// Follow creates a Follow edge from follower to followed. The operation never
// fails in a user-visible way: a self-follow and a duplicate follow are both
// silent no-ops returning nil, with no edge created. Only a nonexistent
// followed user is an error.
func (fv *followValidator) Follow(follow *domain.Follow) error {
	if follow.FollowerID == follow.FollowedID {
		return nil
	}
	if err := runFollowValFns(follow, fv.followedUserExists); err != nil {
		return err
	}
	if fv.followGorm.exists(follow.FollowerID, follow.FollowedID) {
		return nil
	}
	return fv.followGorm.Create(follow)
}

// Unfollow deletes the Follow edge from follower to followed. Unlike Follow,
// it is not idempotent: removing an edge that doesn't exist is a not-found
// error.
func (fv *followValidator) Unfollow(follow *domain.Follow) error {
	err := runFollowValFns(follow, fv.followExists)
	if err != nil {
		return err
	}
	return fv.followGorm.Delete(follow)
}

// runFollowValFns runs any number of functions of type followValFn on the
// passed in Follow object. If none of them returns an error, it returns nil.
// Otherwise, it returns the respective error.
func runFollowValFns(follow *domain.Follow, fns ...followValFn) error {
	for _, fn := range fns {
		if err := fn(follow); err != nil {
			return err
		}
	}
	return nil
}

// A followValFn is any function that takes in a pointer to a domain.Follow
// object and returns an error.
type followValFn func(follow *domain.Follow) error

// followExists makes sure that the Follow edge to be deleted actually exists.
func (fv *followValidator) followExists(follow *domain.Follow) error {
	err := fv.db.
		Where("follower_id = ? AND followed_id = ?", follow.FollowerID, follow.FollowedID).
		First(follow).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.Errorf(errs.ENOTFOUND, "You don't follow this user.")
		}
		return err
	}
	return nil
}

// followedUserExists makes sure that the user to be followed actually exists.
func (fv *followValidator) followedUserExists(follow *domain.Follow) error {
	err := fv.db.First(&domain.User{}, "id = ?", follow.FollowedID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.Errorf(errs.ENOTFOUND, "The user to be followed does not exist.")
		}
		return err
	}
	return nil
}

// IsFollowing takes a follower ID and a followed ID and returns a boolean
// expressing whether that edge exists.
func (fg *followGorm) IsFollowing(followerID, followedID int) bool {
	return fg.exists(followerID, followedID)
}

// exists checks for the presence of a (follower, followed) edge.
func (fg *followGorm) exists(followerID, followedID int) bool {
	var count int64
	fg.db.Model(&domain.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count)
	return count > 0
}

// Create stores the data from the Follow object in a new database record.
func (fg *followGorm) Create(follow *domain.Follow) error {
	if err := fg.db.Create(follow).Error; err != nil {
		return err
	}
	return fg.db.Preload("Follower").Preload("Followed").First(follow).Error
}

// Delete permanently deletes the database record matching the Follow edge.
func (fg *followGorm) Delete(follow *domain.Follow) error {
	return fg.db.
		Where("follower_id = ? AND followed_id = ?", follow.FollowerID, follow.FollowedID).
		Delete(&domain.Follow{}).Error
}
