package app

import (
	"github.com/astroquiz/astroquiz/internal/app/storage"
	"github.com/astroquiz/astroquiz/internal/app/storage/memory"
	"github.com/astroquiz/astroquiz/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to a
// shared, seeded in-memory implementation.
type Stores struct {
	Users   storage.UserStore
	Blog    storage.BlogStore
	Quizzes storage.QuizStore
	Zodiac  storage.ZodiacStore
	Matches storage.MatchStore
}

// FromStore fills every slot from a single backend.
func FromStore(s storage.Store) Stores {
	return Stores{Users: s, Blog: s, Quizzes: s, Zodiac: s, Matches: s}
}

// Application ties the stores together for the HTTP layer.
type Application struct {
	log *logger.Logger

	Users   storage.UserStore
	Blog    storage.BlogStore
	Quizzes storage.QuizStore
	Zodiac  storage.ZodiacStore
	Matches storage.MatchStore
}

// New builds an application with the provided stores.
func New(stores Stores, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	if stores.Users == nil || stores.Blog == nil || stores.Quizzes == nil ||
		stores.Zodiac == nil || stores.Matches == nil {
		mem := memory.New()
		if stores.Users == nil {
			stores.Users = mem
		}
		if stores.Blog == nil {
			stores.Blog = mem
		}
		if stores.Quizzes == nil {
			stores.Quizzes = mem
		}
		if stores.Zodiac == nil {
			stores.Zodiac = mem
		}
		if stores.Matches == nil {
			stores.Matches = mem
		}
		log.Debug("filled missing stores with in-memory backend")
	}

	return &Application{
		log:     log,
		Users:   stores.Users,
		Blog:    stores.Blog,
		Quizzes: stores.Quizzes,
		Zodiac:  stores.Zodiac,
		Matches: stores.Matches,
	}, nil
}

// Logger returns the application logger.
func (a *Application) Logger() *logger.Logger {
	return a.log
}
