package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"

	"blognest/database"
	"blognest/domain"
)

// Server provides the http functionality of the app, namely routing, request
// handling, and middleware. It performs authentication and authorization
// before handing things over to one of the database services, and runs the
// page cache in front of the global feed.
type Server struct {
	router *mux.Router
	log    *slog.Logger

	us    domain.UserService
	gs    domain.GroupService
	ps    domain.PostService
	cs    domain.CommentService
	fs    domain.FollowService
	feed  domain.FeedService
	is    domain.ImageService
	cache domain.PageCache
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the app services passed in.
func NewServer(
	isProd bool,
	csrfAuthKey string,
	log *slog.Logger,
	services *database.Services,
	is domain.ImageService,
	cache domain.PageCache,
) *Server {

	// Construct a new Server with a gorilla router and the services passed in.
	s := &Server{
		router: mux.NewRouter(),
		log:    log,
		us:     services.User,
		gs:     services.Group,
		ps:     services.Post,
		cs:     services.Comment,
		fs:     services.Follow,
		feed:   services.Feed,
		is:     is,
		cache:  cache,
	}

	// Register routes of the auth system.
	s.registerAuthRoutes(s.router)

	// Register routes of the blog itself.
	s.registerFeedRoutes(s.router)
	s.registerPostRoutes(s.router)
	s.registerFollowRoutes(s.router)

	// Set up middleware that needs to run on every request.
	s.router.Use(s.logRequest, setContentTypeJSON, s.authUser)

	// CSRF protection only runs in production. In dev the key would be a
	// hardcoded dummy and the Secure flag off anyway, so the middleware
	// would only get in the way of local clients and tests.
	if isProd {
		csrfMw := csrf.Protect([]byte(csrfAuthKey), csrf.Path("/"))
		s.router.Use(csrfMw)
	}
	return s
}

// ServeHTTP dispatches the request to the router, making the Server itself
// usable as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run starts to listen and serve on the specified port.
func (s *Server) Run(port int) error {
	s.log.Info("listening", "port", port)
	return http.ListenAndServe(":"+strconv.Itoa(port), s.router)
}

// The setContentTypeJSON middleware sets the content type to
// "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// The logRequest middleware logs every request with its status and duration.
func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start),
		)
	})
}

// statusWriter captures the status code written to the response, so the
// request log can include it.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
