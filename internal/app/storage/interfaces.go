// Package storage defines the persistence contracts of the astroquiz service.
//
// Every entity type has its own identifier sequence: identifiers are positive,
// strictly increasing and never reused. Records are append-only; there are no
// update or delete operations. Lookups report absence through a boolean rather
// than an error, and the error return is reserved for backend failures.
package storage

import (
	"context"

	"github.com/astroquiz/astroquiz/internal/app/domain/blog"
	"github.com/astroquiz/astroquiz/internal/app/domain/match"
	"github.com/astroquiz/astroquiz/internal/app/domain/quiz"
	"github.com/astroquiz/astroquiz/internal/app/domain/user"
	"github.com/astroquiz/astroquiz/internal/app/domain/zodiac"
)

// DefaultRecentLimit is the number of zodiac games returned when the caller
// does not ask for a specific amount.
const DefaultRecentLimit = 10

// UserStore persists members.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id int64) (user.User, bool, error)
	// GetUserByUsername performs a case-sensitive exact match.
	GetUserByUsername(ctx context.Context, username string) (user.User, bool, error)
}

// BlogStore persists posts and their comments.
type BlogStore interface {
	CreateBlogPost(ctx context.Context, post blog.Post) (blog.Post, error)
	GetBlogPost(ctx context.Context, id int64) (blog.Post, bool, error)
	ListBlogPosts(ctx context.Context) ([]blog.Post, error)
	ListBlogPostsByCategory(ctx context.Context, category blog.Category) ([]blog.Post, error)

	CreateComment(ctx context.Context, c blog.Comment) (blog.Comment, error)
	ListComments(ctx context.Context, postID int64) ([]blog.Comment, error)
}

// QuizStore persists the quiz catalog and submitted results.
type QuizStore interface {
	CreateQuiz(ctx context.Context, q quiz.Quiz) (quiz.Quiz, error)
	GetQuiz(ctx context.Context, id int64) (quiz.Quiz, bool, error)
	ListQuizzes(ctx context.Context) ([]quiz.Quiz, error)

	CreateQuizResult(ctx context.Context, r quiz.Result) (quiz.Result, error)
}

// ZodiacStore persists compatibility game rounds.
type ZodiacStore interface {
	CreateZodiacGame(ctx context.Context, g zodiac.Game) (zodiac.Game, error)
	// ListRecentZodiacGames orders by timestamp (string comparison) newest
	// first and returns at most limit games. Equal timestamps keep insertion
	// order.
	ListRecentZodiacGames(ctx context.Context, limit int) ([]zodiac.Game, error)
}

// MatchStore persists match generator results.
type MatchStore interface {
	CreateMatch(ctx context.Context, m match.Match) (match.Match, error)
	ListMatchesByUser(ctx context.Context, userID int64) ([]match.Match, error)
}

// Store is the full persistence surface.
type Store interface {
	UserStore
	BlogStore
	QuizStore
	ZodiacStore
	MatchStore
}
