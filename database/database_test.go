package database

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"blognest/domain"
)

// testServices opens a fresh sqlite database in a temp dir and returns a
// fully wired Services container.
func testServices(t *testing.T) *Services {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		domain.User{},
		domain.Group{},
		domain.Post{},
		domain.Comment{},
		domain.Follow{},
	))
	services, err := NewServices(
		gdb,
		WithUser("test-pepper", "test-hmac-key"),
		WithGroup(),
		WithPost(),
		WithComment(),
		WithFollow(),
		WithFeed(),
	)
	require.NoError(t, err)
	return services
}

func testUser(t *testing.T, s *Services, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	}
	require.NoError(t, s.User.Create(user))
	return user
}

func testGroup(t *testing.T, s *Services, slug string) *domain.Group {
	t.Helper()
	group := &domain.Group{
		Slug:        slug,
		Title:       "Group " + slug,
		Description: "A test group.",
	}
	require.NoError(t, s.Group.Create(group))
	return group
}

func testPost(t *testing.T, s *Services, user *domain.User, groupID *int, createdAt time.Time) *domain.Post {
	t.Helper()
	post := &domain.Post{
		UserID:    user.ID,
		GroupID:   groupID,
		Text:      fmt.Sprintf("post by %s at %s", user.Username, createdAt),
		CreatedAt: createdAt,
	}
	require.NoError(t, s.Post.Create(post))
	return post
}
