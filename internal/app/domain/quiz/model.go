package quiz

import "github.com/astroquiz/astroquiz/internal/app/domain"

// Type is the presentation format of a quiz.
type Type string

const (
	TypeDeepDive  Type = "deep-dive"
	TypeQuickRead Type = "quick-read"
	TypeVisual    Type = "visual"
)

// Types lists every accepted quiz type.
var Types = []Type{TypeDeepDive, TypeQuickRead, TypeVisual}

// Valid reports whether t is a known quiz type.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Question is a single multiple-choice prompt. IDs are local to the quiz.
type Question struct {
	ID      int      `json:"id" yaml:"id"`
	Text    string   `json:"text" yaml:"text"`
	Options []string `json:"options" yaml:"options"`
}

// Quiz is a catalog entry the client renders as a questionnaire.
type Quiz struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        Type       `json:"type"`
	Questions   []Question `json:"questions"`
}

// Result records one user's submission for a quiz. Answers and Result are
// opaque to the service.
type Result struct {
	ID        int64           `json:"id"`
	UserID    *int64          `json:"userId"`
	QuizID    *int64          `json:"quizId"`
	Answers   domain.Document `json:"answers"`
	Result    domain.Document `json:"result"`
	Timestamp string          `json:"timestamp"`
}
