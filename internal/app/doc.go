// Package app is the composition layer of the astroquiz service.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Application struct and store wiring
//	├── domain/             # Domain models (pure data structures)
//	│   ├── user/           # Accounts
//	│   ├── blog/           # Posts and comments
//	│   ├── quiz/           # Quizzes and submitted results
//	│   ├── zodiac/         # Zodiac game rounds
//	│   └── match/          # Birth-date character matches
//	├── storage/            # Store interfaces and implementations
//	│   ├── interfaces.go   # UserStore, BlogStore, QuizStore, ...
//	│   ├── memory/         # In-memory implementation (default)
//	│   ├── postgres/       # PostgreSQL implementation
//	│   └── seed/           # Embedded sample catalog
//	├── httpapi/            # HTTP routing, request validation, handlers
//	├── metrics/            # Prometheus collectors
//	└── runtime/            # HTTP server lifecycle and backend selection
//
// # Dependency Direction
//
//	cmd/astroquiz/
//	      │
//	      ▼
//	internal/app/runtime ──► internal/app/httpapi ──► internal/app
//	      │                                               │
//	      └──► internal/platform/migrations               └──► internal/app/storage/...
//
// # Adding a New Entity
//
//  1. Create the model in internal/app/domain/<entity>/
//  2. Add a store interface to internal/app/storage/interfaces.go
//  3. Implement it in storage/memory and storage/postgres, plus a migration
//  4. Attach the store in application.go
//  5. Add a request schema and handlers in internal/app/httpapi/
package app
