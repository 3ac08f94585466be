package http

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"blognest/auth"
	"blognest/domain"
	"blognest/errs"
)

func (s *Server) registerFollowRoutes(r *mux.Router) {
	r.HandleFunc("/profile/{username}/follow/", s.requireAuth(s.handleFollow)).Methods("POST")
	r.HandleFunc("/profile/{username}/unfollow/", s.requireAuth(s.handleUnfollow)).Methods("POST")
}

// handleFollow handles the route "POST /profile/{username}/follow/".
// It creates a follow edge from the signed-in user to the named author and
// redirects back to the author's profile. Following yourself or someone you
// already follow is a silent success.
func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	target, err := s.us.ByUsername(mux.Vars(r)["username"])
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	actor := auth.GetUser(r.Context())
	follow := domain.Follow{
		FollowerID: actor.ID,
		FollowedID: target.ID,
	}
	if err := s.fs.Follow(&follow); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/profile/%s/", target.Username), http.StatusFound)
}

// handleUnfollow handles the route "POST /profile/{username}/unfollow/".
// It removes the follow edge from the signed-in user to the named author.
// Unfollowing someone you don't follow is a not-found error.
func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	target, err := s.us.ByUsername(mux.Vars(r)["username"])
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	actor := auth.GetUser(r.Context())
	follow := domain.Follow{
		FollowerID: actor.ID,
		FollowedID: target.ID,
	}
	if err := s.fs.Unfollow(&follow); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/profile/%s/", target.Username), http.StatusFound)
}
