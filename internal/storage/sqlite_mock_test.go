package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Repository{db: db, now: time.Now}, mock
}

// TestSessionGetItem_QueryError tests that driver errors are returned, not treated as missing keys
func TestSessionGetItem_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT value FROM session_items").
		WithArgs("tab", "k").
		WillReturnError(errors.New("disk I/O error"))

	_, ok, err := repo.Session("tab").GetItem(context.Background(), "k")
	if err == nil {
		t.Fatal("expected error from query failure")
	}
	if ok {
		t.Error("expected ok=false on error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// TestSessionSetItem_ExecError tests write failure
func TestSessionSetItem_ExecError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO session_items").
		WillReturnError(errors.New("database is locked"))

	if err := repo.Session("tab").SetItem(context.Background(), "k", "v"); err == nil {
		t.Error("expected error from exec failure")
	}
}

// TestSessionClear_ExecError tests clear failure
func TestSessionClear_ExecError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM session_items WHERE tab_id").
		WithArgs("tab").
		WillReturnError(errors.New("readonly database"))

	if err := repo.Session("tab").Clear(context.Background()); err == nil {
		t.Error("expected error from exec failure")
	}
}

// TestSessionRemoveItem_ExecError tests remove failure
func TestSessionRemoveItem_ExecError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM session_items").
		WithArgs("tab", "k").
		WillReturnError(errors.New("readonly database"))

	if err := repo.Session("tab").RemoveItem(context.Background(), "k"); err == nil {
		t.Error("expected error from exec failure")
	}
}

// TestSessionKeys_ScanError tests row scanning error
func TestSessionKeys_ScanError(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"key"}).AddRow("a").RowError(0, errors.New("corrupt page"))
	mock.ExpectQuery("SELECT key FROM session_items").WillReturnRows(rows)

	if _, err := repo.Session("tab").Keys(context.Background()); err == nil {
		t.Error("expected error from row failure")
	}
}

// TestLocalGetItem_QueryError tests local read failure
func TestLocalGetItem_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT value FROM local_items").
		WillReturnError(errors.New("disk I/O error"))

	if _, _, err := repo.Local().GetItem(context.Background(), "theme"); err == nil {
		t.Error("expected error from query failure")
	}
}

// TestLocalKeys_QueryError tests local key listing failure
func TestLocalKeys_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT key FROM local_items").
		WillReturnError(errors.New("disk I/O error"))

	if _, err := repo.Local().Keys(context.Background()); err == nil {
		t.Error("expected error from query failure")
	}
}

// TestListTabs_QueryError tests tab listing failure
func TestListTabs_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT DISTINCT tab_id").WillReturnError(errors.New("boom"))

	if _, err := repo.ListTabs(context.Background()); err == nil {
		t.Error("expected error from query failure")
	}
}

// TestPurgeSessions_ExecError tests purge failure
func TestPurgeSessions_ExecError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM session_items WHERE tab_id IN").WillReturnError(errors.New("boom"))

	removed, err := repo.PurgeSessions(context.Background(), time.Hour)
	if err == nil {
		t.Error("expected error from exec failure")
	}
	if removed != 0 {
		t.Errorf("expected 0 removed on error, got %d", removed)
	}
}

// TestMigrate_Error tests that a failing migration is reported
func TestMigrate_Error(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS session_items").WillReturnError(errors.New("no space"))

	if err := repo.migrate(); err == nil {
		t.Error("expected migrate to fail")
	}
}
