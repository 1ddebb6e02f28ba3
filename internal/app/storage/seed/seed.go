// Package seed carries the sample catalog every fresh store starts with.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/astroquiz/astroquiz/internal/app/domain/blog"
	"github.com/astroquiz/astroquiz/internal/app/domain/quiz"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog is the static sample content, in insertion order.
type Catalog struct {
	Quizzes []Quiz `yaml:"quizzes"`
	Posts   []Post `yaml:"posts"`
}

type Quiz struct {
	Title       string          `yaml:"title"`
	Description string          `yaml:"description"`
	Type        quiz.Type       `yaml:"type"`
	Questions   []quiz.Question `yaml:"questions"`
}

type Post struct {
	Title    string        `yaml:"title"`
	Content  string        `yaml:"content"`
	Excerpt  string        `yaml:"excerpt"`
	Category blog.Category `yaml:"category"`
	Tags     []string      `yaml:"tags"`
	AuthorID *int64        `yaml:"authorId"`
}

// Target is the write surface Apply needs.
type Target interface {
	CreateQuiz(ctx context.Context, q quiz.Quiz) (quiz.Quiz, error)
	CreateBlogPost(ctx context.Context, post blog.Post) (blog.Post, error)
}

// Parse decodes a catalog document and checks its enumerations.
func Parse(data []byte) (Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	for i, q := range cat.Quizzes {
		if !q.Type.Valid() {
			return Catalog{}, fmt.Errorf("quiz %d (%q): unknown type %q", i, q.Title, q.Type)
		}
	}
	for i, p := range cat.Posts {
		if !p.Category.Valid() {
			return Catalog{}, fmt.Errorf("post %d (%q): unknown category %q", i, p.Title, p.Category)
		}
	}
	return cat, nil
}

var defaultCatalog = sync.OnceValues(func() (Catalog, error) {
	return Parse(catalogYAML)
})

// Default returns the embedded catalog. It panics if the embedded document is
// malformed, which the package tests rule out.
func Default() Catalog {
	cat, err := defaultCatalog()
	if err != nil {
		panic(fmt.Sprintf("seed: embedded catalog: %v", err))
	}
	return cat
}

// Apply inserts the catalog through the regular create path so seeded records
// consume identifiers from the same sequences as runtime inserts. Quizzes go
// first, then posts, each in catalog order.
func Apply(ctx context.Context, dst Target, cat Catalog, createdAt string) error {
	for _, q := range cat.Quizzes {
		questions := make([]quiz.Question, len(q.Questions))
		for i, question := range q.Questions {
			question.Options = append([]string(nil), question.Options...)
			questions[i] = question
		}
		if _, err := dst.CreateQuiz(ctx, quiz.Quiz{
			Title:       q.Title,
			Description: q.Description,
			Type:        q.Type,
			Questions:   questions,
		}); err != nil {
			return fmt.Errorf("seed quiz %q: %w", q.Title, err)
		}
	}
	for _, p := range cat.Posts {
		var author *int64
		if p.AuthorID != nil {
			id := *p.AuthorID
			author = &id
		}
		if _, err := dst.CreateBlogPost(ctx, blog.Post{
			Title:     p.Title,
			Content:   p.Content,
			Excerpt:   p.Excerpt,
			Category:  p.Category,
			Tags:      append([]string(nil), p.Tags...),
			AuthorID:  author,
			CreatedAt: createdAt,
		}); err != nil {
			return fmt.Errorf("seed post %q: %w", p.Title, err)
		}
	}
	return nil
}

// Seedable is the surface ApplyIfEmpty uses to detect an existing catalog.
type Seedable interface {
	Target
	ListQuizzes(ctx context.Context) ([]quiz.Quiz, error)
	ListBlogPosts(ctx context.Context) ([]blog.Post, error)
}

// ApplyIfEmpty seeds dst only when it holds no quizzes and no posts, so a
// persistent backend is seeded once. It reports whether seeding ran.
func ApplyIfEmpty(ctx context.Context, dst Seedable, cat Catalog, createdAt string) (bool, error) {
	quizzes, err := dst.ListQuizzes(ctx)
	if err != nil {
		return false, fmt.Errorf("check quizzes: %w", err)
	}
	posts, err := dst.ListBlogPosts(ctx)
	if err != nil {
		return false, fmt.Errorf("check posts: %w", err)
	}
	if len(quizzes) > 0 || len(posts) > 0 {
		return false, nil
	}
	if err := Apply(ctx, dst, cat, createdAt); err != nil {
		return false, err
	}
	return true, nil
}
