package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/astroquiz/astroquiz/internal/app/domain"
	"github.com/astroquiz/astroquiz/internal/app/domain/blog"
	"github.com/astroquiz/astroquiz/internal/app/domain/match"
	"github.com/astroquiz/astroquiz/internal/app/domain/quiz"
	"github.com/astroquiz/astroquiz/internal/app/domain/user"
	"github.com/astroquiz/astroquiz/internal/app/domain/zodiac"
	"github.com/astroquiz/astroquiz/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL. Identifiers
// come from per-table BIGSERIAL sequences, which are strictly increasing and
// assigned inside the INSERT.
type Store struct {
	db *sqlx.DB
}

var _ storage.Store = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: sqlx.NewDb(db, "postgres")}
}

// Row types -----------------------------------------------------------------

type postRow struct {
	ID        int64          `db:"id"`
	Title     string         `db:"title"`
	Content   string         `db:"content"`
	Excerpt   string         `db:"excerpt"`
	Category  string         `db:"category"`
	Tags      pq.StringArray `db:"tags"`
	AuthorID  *int64         `db:"author_id"`
	CreatedAt string         `db:"created_at"`
}

func (r postRow) model() blog.Post {
	return blog.Post{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		Excerpt:   r.Excerpt,
		Category:  blog.Category(r.Category),
		Tags:      []string(r.Tags),
		AuthorID:  r.AuthorID,
		CreatedAt: r.CreatedAt,
	}
}

type commentRow struct {
	ID        int64  `db:"id"`
	Content   string `db:"content"`
	UserID    *int64 `db:"user_id"`
	PostID    *int64 `db:"post_id"`
	CreatedAt string `db:"created_at"`
}

func (r commentRow) model() blog.Comment {
	return blog.Comment(r)
}

type quizRow struct {
	ID          int64  `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Type        string `db:"type"`
	Questions   []byte `db:"questions"`
}

func (r quizRow) model() (quiz.Quiz, error) {
	q := quiz.Quiz{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Type:        quiz.Type(r.Type),
	}
	if len(r.Questions) > 0 {
		if err := json.Unmarshal(r.Questions, &q.Questions); err != nil {
			return quiz.Quiz{}, fmt.Errorf("decode quiz %d questions: %w", r.ID, err)
		}
	}
	return q, nil
}

type gameRow struct {
	ID            int64  `db:"id"`
	UserID        *int64 `db:"user_id"`
	Sign          string `db:"sign"`
	MatchSign     string `db:"match_sign"`
	Compatibility int    `db:"compatibility"`
	Timestamp     string `db:"timestamp"`
}

func (r gameRow) model() zodiac.Game {
	return zodiac.Game(r)
}

type matchRow struct {
	ID               int64   `db:"id"`
	UserID           *int64  `db:"user_id"`
	BirthDate        string  `db:"birth_date"`
	TwitterUsername  *string `db:"twitter_username"`
	MatchedCharacter []byte  `db:"matched_character"`
	Compatibility    int     `db:"compatibility"`
	Timestamp        string  `db:"timestamp"`
}

func (r matchRow) model() (match.Match, error) {
	m := match.Match{
		ID:              r.ID,
		UserID:          r.UserID,
		BirthDate:       r.BirthDate,
		TwitterUsername: r.TwitterUsername,
		Compatibility:   r.Compatibility,
		Timestamp:       r.Timestamp,
	}
	doc, err := decodeDocument(r.MatchedCharacter)
	if err != nil {
		return match.Match{}, fmt.Errorf("decode match %d character: %w", r.ID, err)
	}
	m.MatchedCharacter = doc
	return m, nil
}

// --- UserStore ----------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO users (username, password)
		VALUES ($1, $2)
		RETURNING id
	`, u.Username, u.Password).Scan(&u.ID)
	if err != nil {
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (user.User, bool, error) {
	var u user.User
	err := s.db.QueryRowxContext(ctx, `
		SELECT id, username, password FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Username, &u.Password)
	return lookup(u, err, "get user")
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (user.User, bool, error) {
	var u user.User
	err := s.db.QueryRowxContext(ctx, `
		SELECT id, username, password FROM users
		WHERE username = $1
		ORDER BY id
		LIMIT 1
	`, username).Scan(&u.ID, &u.Username, &u.Password)
	return lookup(u, err, "get user by username")
}

// --- BlogStore ----------------------------------------------------------------

const postColumns = `id, title, content, excerpt, category, tags, author_id, created_at`

func (s *Store) CreateBlogPost(ctx context.Context, post blog.Post) (blog.Post, error) {
	var tags any
	if post.Tags != nil {
		tags = pq.StringArray(post.Tags)
	}
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO blog_posts (title, content, excerpt, category, tags, author_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, post.Title, post.Content, post.Excerpt, string(post.Category), tags, post.AuthorID, post.CreatedAt).Scan(&post.ID)
	if err != nil {
		return blog.Post{}, fmt.Errorf("insert blog post: %w", err)
	}
	return post, nil
}

func (s *Store) GetBlogPost(ctx context.Context, id int64) (blog.Post, bool, error) {
	var row postRow
	err := s.db.GetContext(ctx, &row, `SELECT `+postColumns+` FROM blog_posts WHERE id = $1`, id)
	return lookup(row.model(), err, "get blog post")
}

func (s *Store) ListBlogPosts(ctx context.Context) ([]blog.Post, error) {
	var rows []postRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+postColumns+` FROM blog_posts ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list blog posts: %w", err)
	}
	return postModels(rows), nil
}

func (s *Store) ListBlogPostsByCategory(ctx context.Context, category blog.Category) ([]blog.Post, error) {
	var rows []postRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT `+postColumns+` FROM blog_posts
		WHERE category = $1
		ORDER BY id
	`, string(category)); err != nil {
		return nil, fmt.Errorf("list blog posts by category: %w", err)
	}
	return postModels(rows), nil
}

func (s *Store) CreateComment(ctx context.Context, c blog.Comment) (blog.Comment, error) {
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO comments (content, user_id, post_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, c.Content, c.UserID, c.PostID, c.CreatedAt).Scan(&c.ID)
	if err != nil {
		return blog.Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	return c, nil
}

func (s *Store) ListComments(ctx context.Context, postID int64) ([]blog.Comment, error) {
	var rows []commentRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT id, content, user_id, post_id, created_at FROM comments
		WHERE post_id = $1
		ORDER BY id
	`, postID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	out := make([]blog.Comment, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

// --- QuizStore ----------------------------------------------------------------

func (s *Store) CreateQuiz(ctx context.Context, q quiz.Quiz) (quiz.Quiz, error) {
	questions := q.Questions
	if questions == nil {
		questions = []quiz.Question{}
	}
	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		return quiz.Quiz{}, err
	}
	err = s.db.QueryRowxContext(ctx, `
		INSERT INTO quizzes (title, description, type, questions)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, q.Title, q.Description, string(q.Type), questionsJSON).Scan(&q.ID)
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("insert quiz: %w", err)
	}
	return q, nil
}

func (s *Store) GetQuiz(ctx context.Context, id int64) (quiz.Quiz, bool, error) {
	var row quizRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, title, description, type, questions FROM quizzes WHERE id = $1
	`, id)
	if err != nil {
		return lookup(quiz.Quiz{}, err, "get quiz")
	}
	q, err := row.model()
	if err != nil {
		return quiz.Quiz{}, false, err
	}
	return q, true, nil
}

func (s *Store) ListQuizzes(ctx context.Context) ([]quiz.Quiz, error) {
	var rows []quizRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT id, title, description, type, questions FROM quizzes ORDER BY id
	`); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	out := make([]quiz.Quiz, 0, len(rows))
	for _, r := range rows {
		q, err := r.model()
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

func (s *Store) CreateQuizResult(ctx context.Context, r quiz.Result) (quiz.Result, error) {
	answers, err := encodeDocument(r.Answers)
	if err != nil {
		return quiz.Result{}, err
	}
	result, err := encodeDocument(r.Result)
	if err != nil {
		return quiz.Result{}, err
	}
	err = s.db.QueryRowxContext(ctx, `
		INSERT INTO quiz_results (user_id, quiz_id, answers, result, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, r.UserID, r.QuizID, answers, result, r.Timestamp).Scan(&r.ID)
	if err != nil {
		return quiz.Result{}, fmt.Errorf("insert quiz result: %w", err)
	}
	return r, nil
}

// --- ZodiacStore --------------------------------------------------------------

func (s *Store) CreateZodiacGame(ctx context.Context, g zodiac.Game) (zodiac.Game, error) {
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO zodiac_games (user_id, sign, match_sign, compatibility, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, g.UserID, g.Sign, g.MatchSign, g.Compatibility, g.Timestamp).Scan(&g.ID)
	if err != nil {
		return zodiac.Game{}, fmt.Errorf("insert zodiac game: %w", err)
	}
	return g, nil
}

// ListRecentZodiacGames compares timestamps bytewise (COLLATE "C") so the
// order matches plain string comparison regardless of database locale.
func (s *Store) ListRecentZodiacGames(ctx context.Context, limit int) ([]zodiac.Game, error) {
	if limit <= 0 {
		return []zodiac.Game{}, nil
	}
	var rows []gameRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, sign, match_sign, compatibility, timestamp FROM zodiac_games
		ORDER BY timestamp COLLATE "C" DESC, id ASC
		LIMIT $1
	`, limit); err != nil {
		return nil, fmt.Errorf("list recent zodiac games: %w", err)
	}
	out := make([]zodiac.Game, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

// --- MatchStore ---------------------------------------------------------------

func (s *Store) CreateMatch(ctx context.Context, m match.Match) (match.Match, error) {
	character, err := encodeDocument(m.MatchedCharacter)
	if err != nil {
		return match.Match{}, err
	}
	err = s.db.QueryRowxContext(ctx, `
		INSERT INTO matches (user_id, birth_date, twitter_username, matched_character, compatibility, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, m.UserID, m.BirthDate, m.TwitterUsername, character, m.Compatibility, m.Timestamp).Scan(&m.ID)
	if err != nil {
		return match.Match{}, fmt.Errorf("insert match: %w", err)
	}
	return m, nil
}

func (s *Store) ListMatchesByUser(ctx context.Context, userID int64) ([]match.Match, error) {
	var rows []matchRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, birth_date, twitter_username, matched_character, compatibility, timestamp
		FROM matches
		WHERE user_id = $1
		ORDER BY id
	`, userID); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	out := make([]match.Match, 0, len(rows))
	for _, r := range rows {
		m, err := r.model()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Helpers ---------------------------------------------------------------------

// lookup turns sql.ErrNoRows into the absent signal and wraps anything else.
func lookup[T any](v T, err error, op string) (T, bool, error) {
	var zero T
	switch {
	case err == nil:
		return v, true, nil
	case errors.Is(err, sql.ErrNoRows):
		return zero, false, nil
	default:
		return zero, false, fmt.Errorf("%s: %w", op, err)
	}
}

func postModels(rows []postRow) []blog.Post {
	out := make([]blog.Post, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out
}

func encodeDocument(doc domain.Document) ([]byte, error) {
	if doc == nil {
		doc = domain.Document{}
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return b, nil
}

func decodeDocument(raw []byte) (domain.Document, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
