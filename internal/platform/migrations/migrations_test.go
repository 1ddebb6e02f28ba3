package migrations

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestApplyExecutesAllMigrations(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS quiz_results").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := Apply(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApplyStopsOnFirstFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(".*").WillReturnError(errors.New("permission denied"))

	err = Apply(context.Background(), db)
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSourceListsVersionsInOrder(t *testing.T) {
	src, err := Source()
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	defer src.Close()

	first, err := src.First()
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if first != 1 {
		t.Fatalf("expected first version 1, got %d", first)
	}

	next, err := src.Next(first)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if next != 2 {
		t.Fatalf("expected second version 2, got %d", next)
	}

	r, ident, err := src.ReadDown(next)
	if err != nil {
		t.Fatalf("read down: %v", err)
	}
	defer r.Close()
	if ident != "create_activity" {
		t.Fatalf("unexpected identifier %q", ident)
	}
	body, _ := io.ReadAll(r)
	if len(body) == 0 {
		t.Fatalf("empty down migration")
	}
}

func TestUpFilesSorted(t *testing.T) {
	names, err := upFiles()
	if err != nil {
		t.Fatalf("up files: %v", err)
	}
	want := []string{"0001_create_content.up.sql", "0002_create_activity.up.sql"}
	if len(names) != len(want) {
		t.Fatalf("expected %d files, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("file %d: want %s got %s", i, want[i], names[i])
		}
	}
}
