package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"blognest/auth"
	"blognest/domain"
	"blognest/errs"
)

func (s *Server) registerFeedRoutes(r *mux.Router) {
	r.HandleFunc("/", s.handleGlobalFeed).Methods("GET")
	r.HandleFunc("/group/{slug}/", s.handleGroupFeed).Methods("GET")
	r.HandleFunc("/profile/{username}/", s.handleProfileFeed).Methods("GET")
	r.HandleFunc("/follow/", s.requireAuth(s.handleFollowFeed)).Methods("GET")
	r.HandleFunc("/cache/clear/", s.requireAuth(s.handleCacheClear)).Methods("POST")
}

// handleGlobalFeed handles the route "GET /".
// It returns a page of all posts. The rendered page is cached whole under a
// key per page number, so repeat reads within the TTL don't touch the
// database. New posts only show up once the entry expires or the cache is
// cleared explicitly.
func (s *Server) handleGlobalFeed(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	key := fmt.Sprintf("feed:global:%d", page)
	if body, ok := s.cache.Get(r.Context(), key); ok {
		w.Write(body)
		return
	}

	feed, err := s.feed.Global(page)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	body, err := json.Marshal(feed)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	body = append(body, '\n')
	if err := s.cache.Set(r.Context(), key, body); err != nil {
		s.log.Warn("page cache set failed", "key", key, "err", err)
	}
	w.Write(body)
}

// handleGroupFeed handles the route "GET /group/{slug}/".
// It returns the group and a page of the posts assigned to it.
func (s *Server) handleGroupFeed(w http.ResponseWriter, r *http.Request) {
	group, err := s.gs.BySlug(mux.Vars(r)["slug"])
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	feed, err := s.feed.ByGroup(group.ID, pageParam(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	response := struct {
		Group *domain.Group `json:"group"`
		*domain.Page
	}{
		Group: group,
		Page:  feed,
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
	}
}

// handleProfileFeed handles the route "GET /profile/{username}/".
// It returns the author, their post count, whether the requesting user
// follows them, and a page of their posts.
func (s *Server) handleProfileFeed(w http.ResponseWriter, r *http.Request) {
	author, err := s.us.ByUsername(mux.Vars(r)["username"])
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	feed, err := s.feed.ByAuthor(author.ID, pageParam(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	following := false
	if actor := auth.GetUser(r.Context()); actor != nil && actor.ID != author.ID {
		following = s.fs.IsFollowing(actor.ID, author.ID)
	}

	response := struct {
		Author    *domain.User `json:"author"`
		PostCount int          `json:"post_count"`
		Following bool         `json:"following"`
		*domain.Page
	}{
		Author:    author,
		PostCount: feed.TotalCount,
		Following: following,
		Page:      feed,
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
	}
}

// handleFollowFeed handles the route "GET /follow/".
// It returns a page of posts written by the authors the requesting user
// follows.
func (s *Server) handleFollowFeed(w http.ResponseWriter, r *http.Request) {
	actor := auth.GetUser(r.Context())
	feed, err := s.feed.ByFollowed(actor.ID, pageParam(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := json.NewEncoder(w).Encode(feed); err != nil {
		errs.LogError(r, err)
	}
}

// handleCacheClear handles the route "POST /cache/clear/".
// It wipes the whole page cache at once, so the next feed read is fresh.
func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if err := s.cache.Clear(r.Context()); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	response := map[string]string{"message": "cache cleared"}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
	}
}

// pageParam reads the "page" query parameter. An absent, non-numeric or
// non-positive value means page 1. Pages beyond the last one are clamped
// later, by the shared pagination.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
