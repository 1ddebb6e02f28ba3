// Package testutil provides common testing utilities and mock implementations.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/astroquiz/astroquiz/internal/app/domain/blog"
	"github.com/astroquiz/astroquiz/internal/app/domain/match"
	"github.com/astroquiz/astroquiz/internal/app/domain/quiz"
	"github.com/astroquiz/astroquiz/internal/app/domain/user"
	"github.com/astroquiz/astroquiz/internal/app/domain/zodiac"
	"github.com/astroquiz/astroquiz/internal/app/storage"
)

// ErrBackendDown is the default error returned by FailingStore.
var ErrBackendDown = errors.New("storage backend unavailable")

// FailingStore is a storage.Store whose every operation fails with Err. It
// records how many calls it received so tests can assert nothing was written.
type FailingStore struct {
	Err error

	mu    sync.Mutex
	calls int
}

var _ storage.Store = (*FailingStore)(nil)

// NewFailingStore creates a store failing with err, or ErrBackendDown when nil.
func NewFailingStore(err error) *FailingStore {
	if err == nil {
		err = ErrBackendDown
	}
	return &FailingStore{Err: err}
}

// Calls returns the number of operations attempted.
func (f *FailingStore) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *FailingStore) fail() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.Err
}

func (f *FailingStore) CreateUser(context.Context, user.User) (user.User, error) {
	return user.User{}, f.fail()
}

func (f *FailingStore) GetUser(context.Context, int64) (user.User, bool, error) {
	return user.User{}, false, f.fail()
}

func (f *FailingStore) GetUserByUsername(context.Context, string) (user.User, bool, error) {
	return user.User{}, false, f.fail()
}

func (f *FailingStore) CreateBlogPost(context.Context, blog.Post) (blog.Post, error) {
	return blog.Post{}, f.fail()
}

func (f *FailingStore) GetBlogPost(context.Context, int64) (blog.Post, bool, error) {
	return blog.Post{}, false, f.fail()
}

func (f *FailingStore) ListBlogPosts(context.Context) ([]blog.Post, error) {
	return nil, f.fail()
}

func (f *FailingStore) ListBlogPostsByCategory(context.Context, blog.Category) ([]blog.Post, error) {
	return nil, f.fail()
}

func (f *FailingStore) CreateComment(context.Context, blog.Comment) (blog.Comment, error) {
	return blog.Comment{}, f.fail()
}

func (f *FailingStore) ListComments(context.Context, int64) ([]blog.Comment, error) {
	return nil, f.fail()
}

func (f *FailingStore) CreateQuiz(context.Context, quiz.Quiz) (quiz.Quiz, error) {
	return quiz.Quiz{}, f.fail()
}

func (f *FailingStore) GetQuiz(context.Context, int64) (quiz.Quiz, bool, error) {
	return quiz.Quiz{}, false, f.fail()
}

func (f *FailingStore) ListQuizzes(context.Context) ([]quiz.Quiz, error) {
	return nil, f.fail()
}

func (f *FailingStore) CreateQuizResult(context.Context, quiz.Result) (quiz.Result, error) {
	return quiz.Result{}, f.fail()
}

func (f *FailingStore) CreateZodiacGame(context.Context, zodiac.Game) (zodiac.Game, error) {
	return zodiac.Game{}, f.fail()
}

func (f *FailingStore) ListRecentZodiacGames(context.Context, int) ([]zodiac.Game, error) {
	return nil, f.fail()
}

func (f *FailingStore) CreateMatch(context.Context, match.Match) (match.Match, error) {
	return match.Match{}, f.fail()
}

func (f *FailingStore) ListMatchesByUser(context.Context, int64) ([]match.Match, error) {
	return nil, f.fail()
}

// FixedClock returns a clock frozen at t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
