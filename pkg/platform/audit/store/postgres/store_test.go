package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "shareregistry/pkg/domain"
	audit "shareregistry/pkg/platform/audit"
)

var eventColumns = []string{
	"id", "category", "occurred_at", "user_id", "subject", "action",
	"actor", "reason", "request_id", "ip", "device",
}

func TestAppend(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	event := audit.Event{
		ID:        uuid.New(),
		Timestamp: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Subject:   "profile-1",
		Action:    string(audit.EventProfileDeleted),
		Actor:     "admin",
	}

	mock.ExpectExec(`INSERT INTO audit_events`).
		WithArgs(event.ID, "compliance", event.Timestamp, nil, "profile-1", "profile_deleted",
			"admin", "", "", "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, New(db).Append(context.Background(), event))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendPropagatesFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO audit_events`).WillReturnError(errors.New("connection reset"))

	err = New(db).Append(context.Background(), audit.Event{Action: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert audit event")
}

func TestListBySubject(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userID := uuid.New()
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(eventColumns).
		AddRow(uuid.NewString(), "security", at, userID.String(), "anita1234", "credential_issued", "system", "", "req-1", "", "").
		AddRow(uuid.NewString(), "operations", at.Add(time.Minute), nil, "anita1234", "user_logged_in", "anita1234", "", "req-2", "10.0.0.1", "Chrome on Linux")

	mock.ExpectQuery(`SELECT id, category, occurred_at, user_id, subject, action,\s+actor, reason, request_id, ip, device\s+FROM audit_events\s+WHERE subject = \$1`).
		WithArgs("anita1234", 1000).
		WillReturnRows(rows)

	events, err := New(db).ListBySubject(context.Background(), "anita1234", 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, id.UserID(userID), events[0].UserID)
	assert.Equal(t, audit.CategorySecurity, events[0].Category)
	assert.True(t, events[1].UserID.IsNil())
	assert.Equal(t, "Chrome on Linux", events[1].Device)
	require.NoError(t, mock.ExpectationsWereMet())
}
