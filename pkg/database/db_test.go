package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"reviewdesk/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

func TestDSNFromFields(t *testing.T) {
	dsn, err := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		User:     "app",
		Password: "secret",
		Name:     "reviews",
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("DSN returned error: %v", err)
	}
	want := "dbname='reviews' host='db' password='secret' port='5432' sslmode='disable' user='app'"
	if dsn != want {
		t.Fatalf("unexpected dsn:\n got %q\nwant %q", dsn, want)
	}
}

func TestDSNQuotesPassword(t *testing.T) {
	for _, password := range []string{"my secret", `it's`, `back\slash`, "a=b"} {
		dsn, err := DSN(config.DatabaseConfig{
			Host:     "db",
			Port:     "5432",
			User:     "app",
			Password: password,
			Name:     "reviews",
			SSLMode:  "disable",
		})
		if err != nil {
			t.Fatalf("DSN(%q) returned error: %v", password, err)
		}
		if _, err := pq.NewConnector(dsn); err != nil {
			t.Fatalf("lib/pq rejected dsn %q for password %q: %v", dsn, password, err)
		}
	}
}

func TestDSNFromURL(t *testing.T) {
	dsn, err := DSN(config.DatabaseConfig{URL: "postgres://app:secret@db:5432/reviews?sslmode=disable"})
	if err != nil {
		t.Fatalf("DSN returned error: %v", err)
	}
	if dsn == "" {
		t.Fatal("expected non-empty dsn")
	}
}

func TestPipeCommits(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer sqlDB.Close()
	db := &DB{DB: sqlDB}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM feedback").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = db.Pipe(context.Background(), nil, func(tx *sql.Tx) error {
		_, err := tx.Exec("DELETE FROM feedback WHERE id = $1", 1)
		return err
	})
	if err != nil {
		t.Fatalf("Pipe returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPipeRollsBackOnError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer sqlDB.Close()
	db := &DB{DB: sqlDB}

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = db.Pipe(context.Background(), nil, func(tx *sql.Tx) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
