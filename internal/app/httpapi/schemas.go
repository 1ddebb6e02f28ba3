package httpapi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/astroquiz/astroquiz/internal/app/domain/blog"
)

// FieldError describes one rejected field of a request body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a body does not satisfy its insert schema.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

type kind int

const (
	kindString kind = iota
	kindInteger
	kindStringArray
	kindDocument
)

func (k kind) String() string {
	switch k {
	case kindString:
		return "string"
	case kindInteger:
		return "integer"
	case kindStringArray:
		return "array of strings"
	case kindDocument:
		return "object"
	default:
		return "unknown"
	}
}

// rule constrains one top-level field. Optional fields may be absent or null.
type rule struct {
	field    string
	kind     kind
	required bool
	enum     []string
}

// schema is the insert shape of one entity: every field except id.
type schema struct {
	entity string
	rules  []rule
}

var (
	blogPostSchema = schema{entity: "blog_post", rules: []rule{
		{field: "title", kind: kindString, required: true},
		{field: "content", kind: kindString, required: true},
		{field: "excerpt", kind: kindString, required: true},
		{field: "category", kind: kindString, required: true, enum: categoryNames()},
		{field: "tags", kind: kindStringArray},
		{field: "authorId", kind: kindInteger},
		{field: "createdAt", kind: kindString, required: true},
	}}

	commentSchema = schema{entity: "comment", rules: []rule{
		{field: "content", kind: kindString, required: true},
		{field: "userId", kind: kindInteger},
		{field: "postId", kind: kindInteger},
		{field: "createdAt", kind: kindString, required: true},
	}}

	quizResultSchema = schema{entity: "quiz_result", rules: []rule{
		{field: "userId", kind: kindInteger},
		{field: "quizId", kind: kindInteger},
		{field: "answers", kind: kindDocument, required: true},
		{field: "result", kind: kindDocument, required: true},
		{field: "timestamp", kind: kindString, required: true},
	}}

	zodiacGameSchema = schema{entity: "zodiac_game", rules: []rule{
		{field: "userId", kind: kindInteger},
		{field: "sign", kind: kindString, required: true},
		{field: "matchSign", kind: kindString, required: true},
		{field: "compatibility", kind: kindInteger, required: true},
		{field: "timestamp", kind: kindString, required: true},
	}}

	matchSchema = schema{entity: "match", rules: []rule{
		{field: "userId", kind: kindInteger},
		{field: "birthDate", kind: kindString, required: true},
		{field: "twitterUsername", kind: kindString},
		{field: "matchedCharacter", kind: kindDocument, required: true},
		{field: "compatibility", kind: kindInteger, required: true},
		{field: "timestamp", kind: kindString, required: true},
	}}
)

func categoryNames() []string {
	out := make([]string, 0, len(blog.Categories))
	for _, c := range blog.Categories {
		out = append(out, string(c))
	}
	return out
}

// validate checks body against the schema. Fields the schema does not name
// are ignored.
func (s schema) validate(body []byte) *ValidationError {
	verr := &ValidationError{}
	if !gjson.ValidBytes(body) {
		verr.add("body", "must be valid JSON")
		return verr
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		verr.add("body", "must be a JSON object")
		return verr
	}

	for _, r := range s.rules {
		v := root.Get(gjson.Escape(r.field))
		if !v.Exists() || v.Type == gjson.Null {
			if r.required {
				verr.add(r.field, "is required")
			}
			continue
		}
		if !r.kind.matches(v) {
			verr.add(r.field, "must be %s", r.kind.withArticle())
			continue
		}
		if len(r.enum) > 0 && !contains(r.enum, v.String()) {
			verr.add(r.field, "must be one of %s", strings.Join(r.enum, ", "))
		}
	}

	if len(verr.Errors) == 0 {
		return nil
	}
	return verr
}

// project keeps only the fields the schema names, so decoding never sees a
// caller-supplied id or a differently-cased alias of a known field.
func (s schema) project(body []byte) []byte {
	root := gjson.ParseBytes(body)
	var b strings.Builder
	b.WriteByte('{')
	n := 0
	for _, r := range s.rules {
		v := root.Get(gjson.Escape(r.field))
		if !v.Exists() {
			continue
		}
		if n > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(r.field))
		b.WriteByte(':')
		b.WriteString(v.Raw)
		n++
	}
	b.WriteByte('}')
	return []byte(b.String())
}

func (k kind) matches(v gjson.Result) bool {
	switch k {
	case kindString:
		return v.Type == gjson.String
	case kindInteger:
		if v.Type != gjson.Number {
			return false
		}
		_, err := strconv.ParseInt(v.Raw, 10, 64)
		return err == nil
	case kindStringArray:
		if !v.IsArray() {
			return false
		}
		ok := true
		v.ForEach(func(_, el gjson.Result) bool {
			ok = el.Type == gjson.String
			return ok
		})
		return ok
	case kindDocument:
		return v.IsObject()
	default:
		return false
	}
}

func (k kind) withArticle() string {
	switch k {
	case kindInteger, kindStringArray, kindDocument:
		return "an " + k.String()
	default:
		return "a " + k.String()
	}
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
