package http

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"blognest/cache"
	"blognest/database"
	"blognest/domain"
	"blognest/storage"
)

// newTestServer wires a full server against a fresh sqlite database, with an
// in-memory page cache and a throwaway image directory.
func newTestServer(t *testing.T) (*Server, *database.Services) {
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
	services, err := database.NewServices(
		gdb,
		database.WithUser("test-pepper", "test-hmac-key"),
		database.WithGroup(),
		database.WithPost(),
		database.WithComment(),
		database.WithFollow(),
		database.WithFeed(),
	)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(false, "test-csrf-key", log, services,
		storage.NewImageService(t.TempDir()), cache.NewMemory(time.Minute))
	return srv, services
}

func signUp(t *testing.T, s *database.Services, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	}
	require.NoError(t, s.User.Create(user))
	return user
}

func writePost(t *testing.T, s *database.Services, user *domain.User, text string, createdAt time.Time) *domain.Post {
	t.Helper()
	post := &domain.Post{UserID: user.ID, Text: text, CreatedAt: createdAt}
	require.NoError(t, s.Post.Create(post))
	return post
}

// get performs a GET request, optionally signed in as the given user.
func get(srv *Server, path string, user *domain.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if user != nil {
		req.AddCookie(&http.Cookie{Name: "remember_token", Value: user.Remember})
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

// postForm performs a form POST request, optionally signed in as the given
// user.
func postForm(srv *Server, path string, form url.Values, user *domain.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if user != nil {
		req.AddCookie(&http.Cookie{Name: "remember_token", Value: user.Remember})
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestRequireAuthRedirectsToLogin(t *testing.T) {
	srv, _ := newTestServer(t)

	w := get(srv, "/follow/", nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2Ffollow%2F", w.Header().Get("Location"))
}

func TestEditPostByNonOwnerRedirects(t *testing.T) {
	srv, s := newTestServer(t)
	alice := signUp(t, s, "alice")
	bob := signUp(t, s, "bob")
	post := writePost(t, s, alice, "original text", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	w := postForm(srv, fmt.Sprintf("/posts/%d/edit/", post.ID), url.Values{"text": {"hijacked"}}, bob)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), w.Header().Get("Location"))

	found, err := s.Post.ByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "original text", found.Text)
}

func TestEditPostByOwner(t *testing.T) {
	srv, s := newTestServer(t)
	alice := signUp(t, s, "alice")
	post := writePost(t, s, alice, "original text", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	w := postForm(srv, fmt.Sprintf("/posts/%d/edit/", post.ID), url.Values{"text": {"edited text"}}, alice)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), w.Header().Get("Location"))

	found, err := s.Post.ByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited text", found.Text)
	assert.Equal(t, alice.ID, found.UserID)
}

func TestCreatePostRoute(t *testing.T) {
	srv, s := newTestServer(t)
	alice := signUp(t, s, "alice")

	w := postForm(srv, "/create/", url.Values{"text": {"a fresh post"}}, alice)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/alice/", w.Header().Get("Location"))

	count, err := s.Post.CountByUserID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreatePostRejectsEmptyText(t *testing.T) {
	srv, s := newTestServer(t)
	alice := signUp(t, s, "alice")

	w := postForm(srv, "/create/", url.Values{"text": {"   "}}, alice)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	count, err := s.Post.CountByUserID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestProfileFeedPagination(t *testing.T) {
	srv, s := newTestServer(t)
	alice := signUp(t, s, "alice")
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 13; i++ {
		writePost(t, s, alice, fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	var response struct {
		Author    *domain.User  `json:"author"`
		PostCount int           `json:"post_count"`
		Posts     []domain.Post `json:"posts"`
		Page      int           `json:"page"`
		HasNext   bool          `json:"has_next"`
		HasPrev   bool          `json:"has_prev"`
	}

	w := get(srv, "/profile/alice/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "alice", response.Author.Username)
	assert.Equal(t, 13, response.PostCount)
	assert.Len(t, response.Posts, 10)
	assert.True(t, response.HasNext)

	w = get(srv, "/profile/alice/?page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Posts, 3)
	assert.Equal(t, 2, response.Page)
	assert.False(t, response.HasNext)
	assert.True(t, response.HasPrev)
}

func TestGlobalFeedCacheGate(t *testing.T) {
	srv, s := newTestServer(t)
	alice := signUp(t, s, "alice")
	writePost(t, s, alice, "first post", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	w := get(srv, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	firstBody := w.Body.String()
	assert.Contains(t, firstBody, "first post")

	// A new post does not change the cached response.
	writePost(t, s, alice, "second post", time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC))
	w = get(srv, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, firstBody, w.Body.String())

	// Until the cache is cleared explicitly.
	wc := postForm(srv, "/cache/clear/", url.Values{}, alice)
	require.Equal(t, http.StatusOK, wc.Code)

	w = get(srv, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "second post")
}

func TestFollowRoutes(t *testing.T) {
	srv, s := newTestServer(t)
	signUp(t, s, "alice")
	bob := signUp(t, s, "bob")

	w := postForm(srv, "/profile/alice/follow/", url.Values{}, bob)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/alice/", w.Header().Get("Location"))

	// Following twice stays a success and leaves a single edge behind.
	w = postForm(srv, "/profile/alice/follow/", url.Values{}, bob)
	assert.Equal(t, http.StatusFound, w.Code)

	w = postForm(srv, "/profile/alice/unfollow/", url.Values{}, bob)
	assert.Equal(t, http.StatusFound, w.Code)

	// The second unfollow hits a missing edge.
	w = postForm(srv, "/profile/alice/unfollow/", url.Values{}, bob)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFollowFeedRoute(t *testing.T) {
	srv, s := newTestServer(t)
	alice := signUp(t, s, "alice")
	bob := signUp(t, s, "bob")
	writePost(t, s, alice, "from alice", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	w := postForm(srv, "/profile/alice/follow/", url.Values{}, bob)
	require.Equal(t, http.StatusFound, w.Code)

	var feed domain.Page
	w = get(srv, "/follow/", bob)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	require.Len(t, feed.Posts, 1)
	assert.Equal(t, "from alice", feed.Posts[0].Text)
}

func TestAddCommentRoute(t *testing.T) {
	srv, s := newTestServer(t)
	alice := signUp(t, s, "alice")
	carol := signUp(t, s, "carol")
	post := writePost(t, s, alice, "a post", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	w := postForm(srv, fmt.Sprintf("/posts/%d/comment/", post.ID), url.Values{"text": {"hello"}}, carol)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), w.Header().Get("Location"))

	var detail struct {
		Comments     []domain.Comment `json:"comments"`
		CommentCount int              `json:"comment_count"`
	}
	wd := get(srv, fmt.Sprintf("/posts/%d/", post.ID), nil)
	require.Equal(t, http.StatusOK, wd.Code)
	require.NoError(t, json.Unmarshal(wd.Body.Bytes(), &detail))
	assert.Equal(t, 1, detail.CommentCount)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "hello", detail.Comments[0].Text)
	assert.Equal(t, "carol", detail.Comments[0].User.Username)
}

func TestPostDetailNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	w := get(srv, "/posts/9999/", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGroupFeedNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	w := get(srv, "/group/nope/", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"username":"dana","email":"dana@example.com","password":"password123"}`
	req := httptest.NewRequest("POST", "/register", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "remember_token", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)

	// Login with a next parameter redirects back to the requested path.
	creds := `{"username":"dana","password":"password123"}`
	req = httptest.NewRequest("POST", "/login?next=%2Ffollow%2F", strings.NewReader(creds))
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/follow/", w.Header().Get("Location"))

	// Wrong credentials stay out.
	req = httptest.NewRequest("POST", "/login", strings.NewReader(`{"username":"dana","password":"nope"}`))
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
