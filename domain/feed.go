package domain

// FeedPageSize is the number of posts on a single feed page.
const FeedPageSize = 10

// Pagination describes where a Page sits within the full result set.
type Pagination struct {
	Page       int  `json:"page"`
	TotalPages int  `json:"total_pages"`
	TotalCount int  `json:"total_count"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Page is one screenful of a feed: at most FeedPageSize posts in descending
// creation order, plus the pagination metadata.
type Page struct {
	Posts []Post `json:"posts"`
	Pagination
}

// FeedService builds the four feed variants. They differ only in the
// selection applied before pagination - the pagination itself is shared.
type FeedService interface {
	Global(page int) (*Page, error)
	ByGroup(groupID, page int) (*Page, error)
	ByAuthor(userID, page int) (*Page, error)
	ByFollowed(userID, page int) (*Page, error)
}

// Paginate computes the offset and pagination metadata for a page request.
// It is pure arithmetic, deliberately decoupled from any storage.
// A page below 1 becomes 1, a page beyond the last valid page is clamped to
// the last page rather than erroring. An empty result set still has exactly
// one (empty) page.
func Paginate(totalCount, pageSize, page int) (offset int, p Pagination) {
	totalPages := (totalCount + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return (page - 1) * pageSize, Pagination{
		Page:       page,
		TotalPages: totalPages,
		TotalCount: totalCount,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
