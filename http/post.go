package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"blognest/auth"
	"blognest/domain"
	"blognest/errs"
)

func (s *Server) registerPostRoutes(r *mux.Router) {
	r.HandleFunc("/create/", s.requireAuth(s.handleCreatePost)).Methods("POST")
	r.HandleFunc("/posts/{id:[0-9]+}/", s.handlePostDetail).Methods("GET")
	r.HandleFunc("/posts/{id:[0-9]+}/edit/", s.requireAuth(s.handleEditPost)).Methods("POST")
	r.HandleFunc("/posts/{id:[0-9]+}/comment/", s.requireAuth(s.handleAddComment)).Methods("POST")
}

// handlePostDetail handles the route "GET /posts/{id}/".
// It returns the post, its comments in creation order, and the author's
// total post count.
func (s *Server) handlePostDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid post Id."))
		return
	}
	post, err := s.ps.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	comments, err := s.cs.ByPostID(post.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	authorPostCount, err := s.ps.CountByUserID(post.UserID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	response := struct {
		Post            *domain.Post     `json:"post"`
		Comments        []domain.Comment `json:"comments"`
		CommentCount    int              `json:"comment_count"`
		AuthorPostCount int              `json:"author_post_count"`
	}{
		Post:            post,
		Comments:        comments,
		CommentCount:    len(comments),
		AuthorPostCount: authorPostCount,
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
	}
}

// handleCreatePost handles the route "POST /create/".
// It creates a new post owned by the signed-in user, with optional group
// assignment and optional image upload, then redirects to the author's
// profile.
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	if err := parsePostForm(r); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := auth.GetUser(r.Context())
	post := domain.Post{
		UserID: user.ID,
		Text:   r.PostFormValue("text"),
	}

	groupID, err := groupIDParam(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	post.GroupID = groupID

	if err := s.ps.Create(&post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// The image is stored after the post, because its storage path contains
	// the post ID. If the upload turns out invalid, the post is rolled back
	// so nothing persists partially.
	if err := s.attachImage(r, &post); err != nil {
		if delErr := s.ps.Delete(&post); delErr != nil {
			errs.LogError(r, delErr)
		}
		errs.ReturnError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/profile/%s/", user.Username), http.StatusFound)
}

// handleEditPost handles the route "POST /posts/{id}/edit/".
// Only the post's author may edit it. Anyone else is sent back to the post's
// detail view with a soft redirect - the post is readable by everybody, so a
// hard error would be of no use to them.
func (s *Server) handleEditPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid post Id."))
		return
	}
	post, err := s.ps.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := auth.GetUser(r.Context())
	if !domain.CanEditPost(user, post) {
		http.Redirect(w, r, fmt.Sprintf("/posts/%d/", post.ID), http.StatusFound)
		return
	}

	if err := parsePostForm(r); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	post.Text = r.PostFormValue("text")

	groupID, err := groupIDParam(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	post.GroupID = groupID

	if err := s.attachImage(r, post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.ps.Update(post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/posts/%d/", post.ID), http.StatusFound)
}

// handleAddComment handles the route "POST /posts/{id}/comment/".
// It attaches a new comment, owned by the signed-in user, to the post, then
// redirects back to the post's detail view.
func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid post Id."))
		return
	}
	post, err := s.ps.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := parsePostForm(r); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := auth.GetUser(r.Context())
	comment := domain.Comment{
		PostID: post.ID,
		UserID: user.ID,
		Text:   r.PostFormValue("text"),
	}
	if err := s.cs.Create(&comment); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/posts/%d/", post.ID), http.StatusFound)
}

// attachImage stores an uploaded image for the post, if the request carries
// one, and records its URL on the post. A previously stored image is
// replaced. Requests without an image pass through untouched.
func (s *Server) attachImage(r *http.Request, post *domain.Post) error {
	if r.MultipartForm == nil {
		return nil
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil
		}
		return err
	}
	defer file.Close()

	if post.Image != "" {
		if err := s.is.DeleteAll(post.ID); err != nil {
			return err
		}
	}
	img := domain.Image{
		PostID:   post.ID,
		File:     file,
		Filename: header.Filename,
	}
	if err := s.is.Create(&img); err != nil {
		return err
	}
	post.Image = img.URL
	return s.ps.Update(post)
}

// parsePostForm parses the request body as multipart if an image may be
// attached, or as a plain form otherwise.
func parsePostForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(domain.MaxUploadSize); err != nil {
			return errs.Errorf(errs.EINVALID, "Invalid form data.")
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return errs.Errorf(errs.EINVALID, "Invalid form data.")
	}
	return nil
}

// groupIDParam reads the optional "group_id" form value. An empty value
// means the post belongs to no group.
func groupIDParam(r *http.Request) (*int, error) {
	raw := r.PostFormValue("group_id")
	if raw == "" {
		return nil, nil
	}
	groupID, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errs.Errorf(errs.EINVALID, "Invalid group Id.")
	}
	return &groupID, nil
}
