package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
	"github.com/thef4tdaddy/chastityOS-sub012/models"
)

func newTestSQLiteStore(t *testing.T) (*sqliteStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	s := &sqliteStore{
		dsn:    "test.db",
		db:     &DB{DB: db, logger: l},
		logger: l,
	}

	return s, mock, db
}

func TestSQLiteRecords_PutSuccess(t *testing.T) {
	s, mock, db := newTestSQLiteStore(t)
	defer db.Close()

	now := time.Now()
	record := models.Record{
		Collection: "tasks",
		ID:         "t1",
		Payload:    []byte(`{"status":"open"}`),
		UpdatedAt:  now,
	}

	mock.ExpectExec("INSERT INTO records").
		WithArgs("tasks", "t1", []byte(`{"status":"open"}`), now, false).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := s.Records().Put(context.Background(), record); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSQLiteRecords_PutDBError(t *testing.T) {
	s, mock, db := newTestSQLiteStore(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO records").
		WillReturnError(errors.New("disk I/O error"))

	err := s.Records().Put(context.Background(), models.Record{Collection: "tasks", ID: "t1"})
	if err == nil || !strings.Contains(err.Error(), "unexpected DB error") {
		t.Fatalf("expected wrapped unexpected DB error, got %v", err)
	}
}

func TestSQLiteRecords_GetSuccess(t *testing.T) {
	s, mock, db := newTestSQLiteStore(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.
		NewRows([]string{"collection", "id", "payload", "updated_at", "deleted"}).
		AddRow("tasks", "t1", []byte(`{"status":"open"}`), now, false)

	mock.ExpectQuery("SELECT collection, id, payload").
		WithArgs("tasks", "t1").
		WillReturnRows(rows)

	got, err := s.Records().Get(context.Background(), "tasks", "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "t1" || string(got.Payload) != `{"status":"open"}` {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestSQLiteRecords_GetNotFound(t *testing.T) {
	s, mock, db := newTestSQLiteStore(t)
	defer db.Close()

	mock.ExpectQuery("SELECT collection, id, payload").
		WithArgs("tasks", "nope").
		WillReturnError(sql.ErrNoRows)

	_, err := s.Records().Get(context.Background(), "tasks", "nope")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestSQLiteRecords_GetScanError(t *testing.T) {
	s, mock, db := newTestSQLiteStore(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"collection"}).AddRow("tasks") // wrong shape

	mock.ExpectQuery("SELECT collection, id, payload").
		WillReturnRows(rows)

	_, err := s.Records().Get(context.Background(), "tasks", "t1")
	if err == nil {
		t.Fatal("expected scan error, got nil")
	}
}

func TestSQLiteRecords_ListWithFilter(t *testing.T) {
	s, mock, db := newTestSQLiteStore(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.
		NewRows([]string{"collection", "id", "payload", "updated_at", "deleted"}).
		AddRow("tasks", "t2", []byte(`{"status":"done"}`), now, false).
		AddRow("tasks", "t1", []byte(`{"status":"done"}`), now.Add(-time.Hour), false)

	mock.ExpectQuery("SELECT collection, id, payload, updated_at, deleted FROM records").
		WithArgs("tasks", false, "$.status", "done").
		WillReturnRows(rows)

	got, err := s.Records().List(context.Background(), "tasks", models.RemoteQuery{
		Filter: map[string]any{"status": "done"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "t2" {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestSQLiteRecords_ListDBError(t *testing.T) {
	s, mock, db := newTestSQLiteStore(t)
	defer db.Close()

	mock.ExpectQuery("SELECT collection, id, payload, updated_at, deleted FROM records").
		WillReturnError(errors.New("db gone"))

	_, err := s.Records().List(context.Background(), "tasks", models.RemoteQuery{})
	if err == nil || !strings.Contains(err.Error(), "unexpected DB error") {
		t.Fatalf("expected wrapped unexpected DB error, got %v", err)
	}
}

func TestSQLiteRecords_DeleteExisting(t *testing.T) {
	s, mock, db := newTestSQLiteStore(t)
	defer db.Close()

	at := time.Now()

	mock.ExpectExec("UPDATE records").
		WithArgs(at, "tasks", "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Records().Delete(context.Background(), "tasks", "t1", at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSQLiteRecords_DeleteUnknownInsertsTombstone(t *testing.T) {
	s, mock, db := newTestSQLiteStore(t)
	defer db.Close()

	at := time.Now()

	mock.ExpectExec("UPDATE records").
		WithArgs(at, "tasks", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO records").
		WithArgs("tasks", "ghost", sqlmock.AnyArg(), at, true).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := s.Records().Delete(context.Background(), "tasks", "ghost", at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSQLiteRecords_NotConnected(t *testing.T) {
	s := &sqliteStore{logger: logger.Nop()}

	if err := s.Records().Put(context.Background(), models.Record{}); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}
