package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/astroquiz/astroquiz/internal/app/domain/blog"
	"github.com/astroquiz/astroquiz/internal/app/domain/match"
	"github.com/astroquiz/astroquiz/internal/app/domain/quiz"
	"github.com/astroquiz/astroquiz/internal/app/domain/user"
	"github.com/astroquiz/astroquiz/internal/app/domain/zodiac"
	"github.com/astroquiz/astroquiz/internal/app/storage"
	"github.com/astroquiz/astroquiz/internal/app/storage/seed"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use. State lives for the lifetime of the value; nothing is
// persisted.
type Store struct {
	now func() time.Time

	users       *collection[user.User]
	blogPosts   *collection[blog.Post]
	comments    *collection[blog.Comment]
	quizzes     *collection[quiz.Quiz]
	quizResults *collection[quiz.Result]
	zodiacGames *collection[zodiac.Game]
	matches     *collection[match.Match]
}

var _ storage.Store = (*Store)(nil)

// Option customises a Store at construction.
type Option func(*options)

type options struct {
	now     func() time.Time
	catalog *seed.Catalog
	noSeed  bool
}

// WithClock overrides the clock used to stamp seeded records.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithCatalog seeds from cat instead of the embedded default catalog.
func WithCatalog(cat seed.Catalog) Option {
	return func(o *options) { o.catalog = &cat }
}

// WithoutSeed starts with every collection empty.
func WithoutSeed() Option {
	return func(o *options) { o.noSeed = true }
}

// New creates a store seeded with the sample catalog.
func New(opts ...Option) *Store {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store{
		now:         o.now,
		users:       newCollection(cloneUser),
		blogPosts:   newCollection(clonePost),
		comments:    newCollection(cloneComment),
		quizzes:     newCollection(cloneQuiz),
		quizResults: newCollection(cloneQuizResult),
		zodiacGames: newCollection(cloneGame),
		matches:     newCollection(cloneMatch),
	}

	if !o.noSeed {
		cat := seed.Default()
		if o.catalog != nil {
			cat = *o.catalog
		}
		// The memory store never fails a create, so Apply cannot fail here.
		if err := seed.Apply(context.Background(), s, cat, storage.Timestamp(s.now())); err != nil {
			panic(fmt.Sprintf("memory: seed catalog: %v", err))
		}
	}
	return s
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	return s.users.insert(func(id int64) user.User {
		u.ID = id
		return u
	}), nil
}

func (s *Store) GetUser(_ context.Context, id int64) (user.User, bool, error) {
	u, ok := s.users.get(id)
	return u, ok, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (user.User, bool, error) {
	u, ok := s.users.find(func(u user.User) bool { return u.Username == username })
	return u, ok, nil
}

// BlogStore implementation ----------------------------------------------------

func (s *Store) CreateBlogPost(_ context.Context, post blog.Post) (blog.Post, error) {
	return s.blogPosts.insert(func(id int64) blog.Post {
		post.ID = id
		return post
	}), nil
}

func (s *Store) GetBlogPost(_ context.Context, id int64) (blog.Post, bool, error) {
	post, ok := s.blogPosts.get(id)
	return post, ok, nil
}

func (s *Store) ListBlogPosts(_ context.Context) ([]blog.Post, error) {
	return s.blogPosts.filter(nil), nil
}

func (s *Store) ListBlogPostsByCategory(_ context.Context, category blog.Category) ([]blog.Post, error) {
	return s.blogPosts.filter(func(p blog.Post) bool { return p.Category == category }), nil
}

func (s *Store) CreateComment(_ context.Context, c blog.Comment) (blog.Comment, error) {
	return s.comments.insert(func(id int64) blog.Comment {
		c.ID = id
		return c
	}), nil
}

func (s *Store) ListComments(_ context.Context, postID int64) ([]blog.Comment, error) {
	return s.comments.filter(func(c blog.Comment) bool {
		return c.PostID != nil && *c.PostID == postID
	}), nil
}

// QuizStore implementation ----------------------------------------------------

func (s *Store) CreateQuiz(_ context.Context, q quiz.Quiz) (quiz.Quiz, error) {
	return s.quizzes.insert(func(id int64) quiz.Quiz {
		q.ID = id
		return q
	}), nil
}

func (s *Store) GetQuiz(_ context.Context, id int64) (quiz.Quiz, bool, error) {
	q, ok := s.quizzes.get(id)
	return q, ok, nil
}

func (s *Store) ListQuizzes(_ context.Context) ([]quiz.Quiz, error) {
	return s.quizzes.filter(nil), nil
}

func (s *Store) CreateQuizResult(_ context.Context, r quiz.Result) (quiz.Result, error) {
	return s.quizResults.insert(func(id int64) quiz.Result {
		r.ID = id
		return r
	}), nil
}

// ZodiacStore implementation --------------------------------------------------

func (s *Store) CreateZodiacGame(_ context.Context, g zodiac.Game) (zodiac.Game, error) {
	return s.zodiacGames.insert(func(id int64) zodiac.Game {
		g.ID = id
		return g
	}), nil
}

func (s *Store) ListRecentZodiacGames(_ context.Context, limit int) ([]zodiac.Game, error) {
	if limit <= 0 {
		return []zodiac.Game{}, nil
	}
	games := s.zodiacGames.filter(nil)
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].Timestamp > games[j].Timestamp
	})
	if len(games) > limit {
		games = games[:limit]
	}
	return games, nil
}

// MatchStore implementation ---------------------------------------------------

func (s *Store) CreateMatch(_ context.Context, m match.Match) (match.Match, error) {
	return s.matches.insert(func(id int64) match.Match {
		m.ID = id
		return m
	}), nil
}

func (s *Store) ListMatchesByUser(_ context.Context, userID int64) ([]match.Match, error) {
	return s.matches.filter(func(m match.Match) bool {
		return m.UserID != nil && *m.UserID == userID
	}), nil
}

// Helpers ---------------------------------------------------------------------

func cloneInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrings(src []string) []string {
	if src == nil {
		return nil
	}
	return append([]string(nil), src...)
}

func cloneUser(u user.User) user.User {
	return u
}

func clonePost(p blog.Post) blog.Post {
	p.Tags = cloneStrings(p.Tags)
	p.AuthorID = cloneInt64(p.AuthorID)
	return p
}

func cloneComment(c blog.Comment) blog.Comment {
	c.UserID = cloneInt64(c.UserID)
	c.PostID = cloneInt64(c.PostID)
	return c
}

func cloneQuiz(q quiz.Quiz) quiz.Quiz {
	if q.Questions != nil {
		questions := make([]quiz.Question, len(q.Questions))
		for i, question := range q.Questions {
			question.Options = cloneStrings(question.Options)
			questions[i] = question
		}
		q.Questions = questions
	}
	return q
}

func cloneQuizResult(r quiz.Result) quiz.Result {
	r.UserID = cloneInt64(r.UserID)
	r.QuizID = cloneInt64(r.QuizID)
	r.Answers = r.Answers.Clone()
	r.Result = r.Result.Clone()
	return r
}

func cloneGame(g zodiac.Game) zodiac.Game {
	g.UserID = cloneInt64(g.UserID)
	return g
}

func cloneMatch(m match.Match) match.Match {
	m.UserID = cloneInt64(m.UserID)
	m.TwitterUsername = cloneString(m.TwitterUsername)
	m.MatchedCharacter = m.MatchedCharacter.Clone()
	return m
}
