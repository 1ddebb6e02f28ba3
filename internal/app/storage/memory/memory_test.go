package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astroquiz/astroquiz/internal/app/domain"
	"github.com/astroquiz/astroquiz/internal/app/domain/blog"
	"github.com/astroquiz/astroquiz/internal/app/domain/match"
	"github.com/astroquiz/astroquiz/internal/app/domain/quiz"
	"github.com/astroquiz/astroquiz/internal/app/domain/user"
	"github.com/astroquiz/astroquiz/internal/app/domain/zodiac"
	"github.com/astroquiz/astroquiz/internal/app/storage/seed"
	"github.com/astroquiz/astroquiz/pkg/testutil"
)

func int64p(v int64) *int64 { return &v }

func TestNewSeedsCatalog(t *testing.T) {
	fixed := time.Date(2024, 5, 4, 3, 2, 1, 0, time.UTC)
	store := New(WithClock(testutil.FixedClock(fixed)))
	ctx := context.Background()

	quizzes, err := store.ListQuizzes(ctx)
	require.NoError(t, err)
	require.Len(t, quizzes, 2)
	assert.Equal(t, int64(1), quizzes[0].ID)
	assert.Equal(t, int64(2), quizzes[1].ID)
	assert.Equal(t, quiz.TypeQuickRead, quizzes[1].Type)

	posts, err := store.ListBlogPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, len(seed.Default().Posts))
	for i, p := range posts {
		assert.Equal(t, int64(i+1), p.ID)
		assert.Equal(t, "2024-05-04T03:02:01.000Z", p.CreatedAt)
	}

	created, err := store.CreateBlogPost(ctx, blog.Post{Title: "fresh", Category: blog.CategoryAstrology})
	require.NoError(t, err)
	assert.Equal(t, int64(len(posts)+1), created.ID, "runtime ids continue after seeded ids")
}

func TestWithoutSeedAndWithCatalog(t *testing.T) {
	ctx := context.Background()

	empty := New(WithoutSeed())
	posts, err := empty.ListBlogPosts(ctx)
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)

	custom := New(WithCatalog(seed.Catalog{Posts: []seed.Post{{Title: "only", Category: blog.CategoryPersonality}}}))
	posts, err = custom.ListBlogPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "only", posts[0].Title)
}

func TestCreateThenGetRoundTrips(t *testing.T) {
	store := New()
	ctx := context.Background()

	before, err := store.ListBlogPosts(ctx)
	require.NoError(t, err)
	var maxID int64
	for _, p := range before {
		if p.ID > maxID {
			maxID = p.ID
		}
	}

	in := blog.Post{
		Title:     "Retrograde season",
		Content:   "body",
		Excerpt:   "short",
		Category:  blog.CategoryAstrology,
		Tags:      []string{"mercury"},
		AuthorID:  int64p(3),
		CreatedAt: "2024-01-01T00:00:00.000Z",
	}
	created, err := store.CreateBlogPost(ctx, in)
	require.NoError(t, err)
	assert.Greater(t, created.ID, maxID)

	got, ok, err := store.GetBlogPost(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created, got)

	_, ok, err = store.GetBlogPost(ctx, 999999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateIgnoresCallerSuppliedID(t *testing.T) {
	store := New(WithoutSeed())
	ctx := context.Background()

	first, _ := store.CreateQuizResult(ctx, quiz.Result{ID: 42, Timestamp: "t"})
	second, _ := store.CreateQuizResult(ctx, quiz.Result{ID: 1, Timestamp: "t"})
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
}

func TestSequencesAreIndependentPerType(t *testing.T) {
	store := New(WithoutSeed())
	ctx := context.Background()

	g, _ := store.CreateZodiacGame(ctx, zodiac.Game{Sign: "leo", MatchSign: "aries", Timestamp: "t"})
	m, _ := store.CreateMatch(ctx, match.Match{BirthDate: "1990-08-01", Timestamp: "t"})
	c, _ := store.CreateComment(ctx, blog.Comment{Content: "hi", CreatedAt: "t"})
	u, _ := store.CreateUser(ctx, user.User{Username: "stargazer"})

	for _, id := range []int64{g.ID, m.ID, c.ID, u.ID} {
		assert.Equal(t, int64(1), id)
	}
}

func TestConcurrentCreatesAssignDistinctGaplessIDs(t *testing.T) {
	store := New()
	ctx := context.Background()

	before, _ := store.ListBlogPosts(ctx)
	const n = 200

	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := store.CreateBlogPost(ctx, blog.Post{Title: "parallel", Category: blog.CategoryRelationships})
			if err == nil {
				ids <- p.ID
			}
		}()
	}
	// Readers run alongside writers and must always see a consistent list.
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			posts, _ := store.ListBlogPosts(ctx)
			for j := 1; j < len(posts); j++ {
				if posts[j].ID <= posts[j-1].ID {
					t.Errorf("list out of insertion order at %d", j)
				}
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, n)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	require.Len(t, seen, n)
	base := int64(len(before))
	for id := base + 1; id <= base+n; id++ {
		assert.True(t, seen[id], "missing id %d", id)
	}
	assert.Equal(t, len(before)+n, store.blogPosts.size())
}

func TestListReturnsSeedPlusCreatedInInsertionOrder(t *testing.T) {
	store := New()
	ctx := context.Background()

	seeded, _ := store.ListBlogPosts(ctx)
	titles := []string{"a", "b", "c"}
	for _, title := range titles {
		_, err := store.CreateBlogPost(ctx, blog.Post{Title: title, Category: blog.CategoryPersonality})
		require.NoError(t, err)
	}

	all, err := store.ListBlogPosts(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(seeded)+len(titles))
	assert.Equal(t, seeded, all[:len(seeded)])
	for i, title := range titles {
		assert.Equal(t, title, all[len(seeded)+i].Title)
	}
}

func TestListBlogPostsByCategory(t *testing.T) {
	store := New()
	ctx := context.Background()

	all, _ := store.ListBlogPosts(ctx)
	astro, err := store.ListBlogPostsByCategory(ctx, blog.CategoryAstrology)
	require.NoError(t, err)

	var want []blog.Post
	for _, p := range all {
		if p.Category == blog.CategoryAstrology {
			want = append(want, p)
		}
	}
	assert.Equal(t, want, astro)

	none, err := store.ListBlogPostsByCategory(ctx, "numerology")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestListCommentsFiltersByPost(t *testing.T) {
	store := New()
	ctx := context.Background()

	_, _ = store.CreateComment(ctx, blog.Comment{Content: "one", PostID: int64p(1), CreatedAt: "t"})
	_, _ = store.CreateComment(ctx, blog.Comment{Content: "two", PostID: int64p(2), CreatedAt: "t"})
	_, _ = store.CreateComment(ctx, blog.Comment{Content: "three", PostID: int64p(1), CreatedAt: "t"})
	_, _ = store.CreateComment(ctx, blog.Comment{Content: "orphan", CreatedAt: "t"})

	comments, err := store.ListComments(ctx, 1)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "one", comments[0].Content)
	assert.Equal(t, "three", comments[1].Content)

	empty, err := store.ListComments(ctx, 77)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestListMatchesByUser(t *testing.T) {
	store := New()
	ctx := context.Background()

	handle := "starchild"
	_, _ = store.CreateMatch(ctx, match.Match{UserID: int64p(5), BirthDate: "1992-04-01", TwitterUsername: &handle, Compatibility: 80, Timestamp: "t"})
	_, _ = store.CreateMatch(ctx, match.Match{UserID: int64p(6), BirthDate: "1993-04-01", Compatibility: 70, Timestamp: "t"})
	_, _ = store.CreateMatch(ctx, match.Match{BirthDate: "1994-04-01", Compatibility: 60, Timestamp: "t"})

	matches, err := store.ListMatchesByUser(ctx, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 80, matches[0].Compatibility)
	require.NotNil(t, matches[0].TwitterUsername)
	assert.Equal(t, "starchild", *matches[0].TwitterUsername)

	none, err := store.ListMatchesByUser(ctx, 404)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestListRecentZodiacGames(t *testing.T) {
	store := New()
	ctx := context.Background()

	for _, ts := range []string{"2024-01-01T00:00:00Z", "2024-03-01T00:00:00Z", "2024-02-01T00:00:00Z"} {
		_, err := store.CreateZodiacGame(ctx, zodiac.Game{Sign: "virgo", MatchSign: "taurus", Timestamp: ts})
		require.NoError(t, err)
	}

	games, err := store.ListRecentZodiacGames(ctx, 2)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "2024-03-01T00:00:00Z", games[0].Timestamp)
	assert.Equal(t, "2024-02-01T00:00:00Z", games[1].Timestamp)

	all, err := store.ListRecentZodiacGames(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	zero, err := store.ListRecentZodiacGames(ctx, 0)
	require.NoError(t, err)
	assert.NotNil(t, zero)
	assert.Empty(t, zero)
}

func TestListRecentZodiacGamesTieKeepsInsertionOrder(t *testing.T) {
	store := New(WithoutSeed())
	ctx := context.Background()

	first, _ := store.CreateZodiacGame(ctx, zodiac.Game{Sign: "a", Timestamp: "2024-01-01T00:00:00Z"})
	second, _ := store.CreateZodiacGame(ctx, zodiac.Game{Sign: "b", Timestamp: "2024-01-01T00:00:00Z"})

	games, _ := store.ListRecentZodiacGames(ctx, 10)
	require.Len(t, games, 2)
	assert.Equal(t, first.ID, games[0].ID)
	assert.Equal(t, second.ID, games[1].ID)
}

func TestGetUserByUsername(t *testing.T) {
	store := New()
	ctx := context.Background()

	created, err := store.CreateUser(ctx, user.User{Username: "Luna", Password: "moon"})
	require.NoError(t, err)
	_, _ = store.CreateUser(ctx, user.User{Username: "Luna", Password: "shadow"})

	got, ok, err := store.GetUserByUsername(ctx, "Luna")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created, got, "first match wins")

	_, ok, _ = store.GetUserByUsername(ctx, "luna")
	assert.False(t, ok, "lookup is case-sensitive")

	byID, ok, err := store.GetUser(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "moon", byID.Password)

	_, ok, _ = store.GetUser(ctx, 12345)
	assert.False(t, ok)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	store := New(WithoutSeed())
	ctx := context.Background()

	tags := []string{"venus"}
	post, _ := store.CreateBlogPost(ctx, blog.Post{Title: "t", Tags: tags, AuthorID: int64p(1)})
	tags[0] = "mutated-input"
	post.Tags[0] = "mutated-output"
	*post.AuthorID = 9

	stored, _, _ := store.GetBlogPost(ctx, post.ID)
	assert.Equal(t, []string{"venus"}, stored.Tags)
	assert.Equal(t, int64(1), *stored.AuthorID)

	answers := domain.Document{"q1": map[string]any{"choice": "alone"}}
	res, _ := store.CreateQuizResult(ctx, quiz.Result{Answers: answers, Result: domain.Document{"type": "introvert"}, Timestamp: "t"})
	answers["q1"].(map[string]any)["choice"] = "crowd"
	res.Result["type"] = "extrovert"

	storedResult, ok := store.quizResults.get(res.ID)
	require.True(t, ok)
	assert.Equal(t, "alone", storedResult.Answers["q1"].(map[string]any)["choice"])
	assert.Equal(t, "introvert", storedResult.Result["type"])

	seededQuiz := New()
	q, ok, _ := seededQuiz.GetQuiz(ctx, 1)
	require.True(t, ok)
	q.Questions[0].Options[0] = "mutated"
	again, _, _ := seededQuiz.GetQuiz(ctx, 1)
	assert.Equal(t, "Spending time alone", again.Questions[0].Options[0])
}

func TestMatchDocumentIsCopied(t *testing.T) {
	store := New(WithoutSeed())
	ctx := context.Background()

	character := domain.Document{"name": "Luke", "traits": []any{"brave"}}
	created, _ := store.CreateMatch(ctx, match.Match{UserID: int64p(1), MatchedCharacter: character, Timestamp: "t"})
	character["traits"].([]any)[0] = "reckless"
	created.MatchedCharacter["name"] = "Vader"

	matches, _ := store.ListMatchesByUser(ctx, 1)
	require.Len(t, matches, 1)
	assert.Equal(t, "Luke", matches[0].MatchedCharacter["name"])
	assert.Equal(t, []any{"brave"}, matches[0].MatchedCharacter["traits"])
	assert.Nil(t, matches[0].TwitterUsername)
}
