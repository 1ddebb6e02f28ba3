package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	app "github.com/astroquiz/astroquiz/internal/app"
	"github.com/astroquiz/astroquiz/internal/app/domain/blog"
	"github.com/astroquiz/astroquiz/internal/app/domain/match"
	"github.com/astroquiz/astroquiz/internal/app/domain/quiz"
	"github.com/astroquiz/astroquiz/internal/app/domain/zodiac"
	"github.com/astroquiz/astroquiz/internal/app/metrics"
	"github.com/astroquiz/astroquiz/internal/app/storage"
	"github.com/astroquiz/astroquiz/pkg/logger"
)

const maxBodyBytes = 1 << 20

// handler bundles HTTP endpoints for the application stores.
type handler struct {
	app *app.Application
	log *logger.Logger
}

// Option customises the handler returned by NewHandler.
type Option func(*options)

type options struct {
	staticDir string
}

// WithStaticDir serves the built browser client from dir for non-API paths.
func WithStaticDir(dir string) Option {
	return func(o *options) { o.staticDir = dir }
}

// NewHandler returns a router exposing the REST API, health and metrics.
func NewHandler(application *app.Application, opts ...Option) http.Handler {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	h := &handler{app: application, log: application.Logger().Component("httpapi")}

	router := mux.NewRouter()
	router.Use(metrics.InstrumentHandler)
	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	router.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	router.HandleFunc("/api/blog-posts", h.listBlogPosts).Methods(http.MethodGet)
	router.HandleFunc("/api/blog-posts", h.createBlogPost).Methods(http.MethodPost)
	router.HandleFunc("/api/blog-posts/category/{category}", h.listBlogPostsByCategory).Methods(http.MethodGet)
	router.HandleFunc("/api/blog-posts/{id}", h.getBlogPost).Methods(http.MethodGet)
	router.HandleFunc("/api/blog-posts/{postId}/comments", h.listComments).Methods(http.MethodGet)
	router.HandleFunc("/api/blog-posts/{postId}/comments", h.createComment).Methods(http.MethodPost)

	router.HandleFunc("/api/quizzes", h.listQuizzes).Methods(http.MethodGet)
	router.HandleFunc("/api/quizzes/{id}", h.getQuiz).Methods(http.MethodGet)
	router.HandleFunc("/api/quiz-results", h.createQuizResult).Methods(http.MethodPost)

	router.HandleFunc("/api/zodiac-games", h.createZodiacGame).Methods(http.MethodPost)
	router.HandleFunc("/api/zodiac-games/recent", h.listRecentZodiacGames).Methods(http.MethodGet)

	router.HandleFunc("/api/matches", h.createMatch).Methods(http.MethodPost)
	router.HandleFunc("/api/matches/user/{userId}", h.listMatchesByUser).Methods(http.MethodGet)

	if o.staticDir != "" {
		router.PathPrefix("/").Handler(newSPAHandler(o.staticDir)).Methods(http.MethodGet, http.MethodHead)
	}
	return router
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Blog posts ------------------------------------------------------------------

func (h *handler) listBlogPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.app.Blog.ListBlogPosts(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *handler) getBlogPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	post, found, err := h.app.Blog.GetBlogPost(r.Context(), id)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Blog post not found")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *handler) listBlogPostsByCategory(w http.ResponseWriter, r *http.Request) {
	category := blog.Category(mux.Vars(r)["category"])
	posts, err := h.app.Blog.ListBlogPostsByCategory(r.Context(), category)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *handler) createBlogPost(w http.ResponseWriter, r *http.Request) {
	post, ok := decodeCreate[blog.Post](h, w, r, blogPostSchema)
	if !ok {
		return
	}
	saved, err := h.app.Blog.CreateBlogPost(r.Context(), post)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.created(blogPostSchema, saved.ID)
	writeJSON(w, http.StatusOK, saved)
}

// Comments --------------------------------------------------------------------

func (h *handler) listComments(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "postId")
	if !ok {
		return
	}
	comments, err := h.app.Blog.ListComments(r.Context(), postID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// createComment attaches the comment to the post named in the path unless the
// body already names the same post.
func (h *handler) createComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "postId")
	if !ok {
		return
	}
	comment, ok := decodeCreate[blog.Comment](h, w, r, commentSchema)
	if !ok {
		return
	}
	switch {
	case comment.PostID == nil:
		comment.PostID = &postID
	case *comment.PostID != postID:
		verr := &ValidationError{}
		verr.add("postId", "must match the post in the path")
		h.rejected(w, commentSchema, verr)
		return
	}

	saved, err := h.app.Blog.CreateComment(r.Context(), comment)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.created(commentSchema, saved.ID)
	writeJSON(w, http.StatusOK, saved)
}

// Quizzes ---------------------------------------------------------------------

func (h *handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.app.Quizzes.ListQuizzes(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	q, found, err := h.app.Quizzes.GetQuiz(r.Context(), id)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Quiz not found")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *handler) createQuizResult(w http.ResponseWriter, r *http.Request) {
	result, ok := decodeCreate[quiz.Result](h, w, r, quizResultSchema)
	if !ok {
		return
	}
	saved, err := h.app.Quizzes.CreateQuizResult(r.Context(), result)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.created(quizResultSchema, saved.ID)
	writeJSON(w, http.StatusOK, saved)
}

// Zodiac games ----------------------------------------------------------------

func (h *handler) createZodiacGame(w http.ResponseWriter, r *http.Request) {
	game, ok := decodeCreate[zodiac.Game](h, w, r, zodiacGameSchema)
	if !ok {
		return
	}
	saved, err := h.app.Zodiac.CreateZodiacGame(r.Context(), game)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.created(zodiacGameSchema, saved.ID)
	writeJSON(w, http.StatusOK, saved)
}

func (h *handler) listRecentZodiacGames(w http.ResponseWriter, r *http.Request) {
	limit := storage.DefaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	games, err := h.app.Zodiac.ListRecentZodiacGames(r.Context(), limit)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// Matches ---------------------------------------------------------------------

func (h *handler) createMatch(w http.ResponseWriter, r *http.Request) {
	m, ok := decodeCreate[match.Match](h, w, r, matchSchema)
	if !ok {
		return
	}
	saved, err := h.app.Matches.CreateMatch(r.Context(), m)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.created(matchSchema, saved.ID)
	writeJSON(w, http.StatusOK, saved)
}

func (h *handler) listMatchesByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	matches, err := h.app.Matches.ListMatchesByUser(r.Context(), userID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// Helpers ---------------------------------------------------------------------

// decodeCreate reads and validates a create body against s, then decodes it
// into T. On failure the response has already been written.
func decodeCreate[T any](h *handler, w http.ResponseWriter, r *http.Request, s schema) (T, bool) {
	var out T

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return out, false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return out, false
	}

	if verr := s.validate(body); verr != nil {
		h.rejected(w, s, verr)
		return out, false
	}
	if err := json.Unmarshal(s.project(body), &out); err != nil {
		verr := &ValidationError{}
		verr.add("body", "%v", err)
		h.rejected(w, s, verr)
		return out, false
	}
	return out, true
}

func (h *handler) rejected(w http.ResponseWriter, s schema, verr *ValidationError) {
	metrics.RecordValidationFailure(s.entity)
	h.log.WithField("entity", s.entity).Debug(verr.Error())
	writeJSON(w, http.StatusBadRequest, struct {
		Message string       `json:"message"`
		Errors  []FieldError `json:"errors"`
	}{Message: "validation failed", Errors: verr.Errors})
}

func (h *handler) created(s schema, id int64) {
	metrics.RecordEntityCreated(s.entity)
	h.log.WithFields(map[string]any{"entity": s.entity, "id": id}).Info("created")
}

func (h *handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.WithError(err).WithFields(map[string]any{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error("request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

// pathID parses a positive integer path variable, replying 400 when it is not one.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
