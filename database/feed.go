package database

import (
	"gorm.io/gorm"

	"blognest/domain"
)

// FeedService composes the four feed variants. Each variant is just a
// selection scope applied to the posts table - counting, clamping and
// slicing the page is shared by all of them.
// It implements the domain.FeedService interface.
type FeedService struct {
	db *gorm.DB
}

// NewFeedService returns an instance of FeedService.
func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{
		db: db,
	}
}

// Ensure the FeedService struct properly implements the domain.FeedService
// interface. If it does not, then this expression becomes invalid and won't
// compile.
var _ domain.FeedService = &FeedService{}

// Global returns a page of all posts.
func (fs *FeedService) Global(page int) (*domain.Page, error) {
	return fs.page(func(db *gorm.DB) *gorm.DB {
		return db
	}, page)
}

// ByGroup returns a page of the posts assigned to the given group.
func (fs *FeedService) ByGroup(groupID, page int) (*domain.Page, error) {
	return fs.page(func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.group_id = ?", groupID)
	}, page)
}

// ByAuthor returns a page of the posts written by the given user.
func (fs *FeedService) ByAuthor(userID, page int) (*domain.Page, error) {
	return fs.page(func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.user_id = ?", userID)
	}, page)
}

// ByFollowed returns a page of the posts written by the authors the given
// user follows.
func (fs *FeedService) ByFollowed(userID, page int) (*domain.Page, error) {
	return fs.page(func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN follows ON follows.followed_id = posts.user_id").
			Where("follows.follower_id = ?", userID)
	}, page)
}

// page runs the shared pagination path: count the selection, clamp the
// requested page, then fetch one page of posts in descending creation order.
func (fs *FeedService) page(scope func(*gorm.DB) *gorm.DB, page int) (*domain.Page, error) {
	var total int64
	err := scope(fs.db.Model(&domain.Post{})).Count(&total).Error
	if err != nil {
		return nil, err
	}

	offset, p := domain.Paginate(int(total), domain.FeedPageSize, page)

	posts := []domain.Post{}
	err = scope(fs.db.Model(&domain.Post{})).
		Preload("User").
		Preload("Group").
		Order("posts.created_at desc, posts.id desc").
		Offset(offset).
		Limit(domain.FeedPageSize).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	return &domain.Page{
		Posts:      posts,
		Pagination: p,
	}, nil
}
