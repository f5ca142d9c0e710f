package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memochat/internal/database/dbtest"
	app_errors "memochat/internal/errors"
	"memochat/internal/model"
	"memochat/internal/repository"
)

// steppingClock returns strictly increasing timestamps, one second apart.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func setupMockRepo(t *testing.T) (repository.Repository, sqlmock.Sqlmock) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewSQLRepository(db), mockDB
}

func TestSQLRepository_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, mockDB := setupMockRepo(t)
		mockDB.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs("alice", "hash", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))

		id, err := repo.CreateUser(ctx, "alice", "hash")
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Failure - Postgres unique violation", func(t *testing.T) {
		repo, mockDB := setupMockRepo(t)
		mockDB.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

		_, err := repo.CreateUser(ctx, "alice", "hash")
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("Failure - Other database error", func(t *testing.T) {
		repo, mockDB := setupMockRepo(t)
		mockDB.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.CreateUser(ctx, "alice", "hash")
		assert.ErrorIs(t, err, app_errors.ErrPersistence)
		assert.NotErrorIs(t, err, repository.ErrDuplicate)
	})
}

func TestSQLRepository_GetUserByUsername_NotFound(t *testing.T) {
	repo, mockDB := setupMockRepo(t)
	mockDB.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSQLRepository_LoadSession(t *testing.T) {
	ctx := context.Background()

	t.Run("No row yields empty transcript", func(t *testing.T) {
		repo, mockDB := setupMockRepo(t)
		mockDB.ExpectQuery(regexp.QuoteMeta("SELECT messages FROM chat_logs")).
			WithArgs(int64(1), "abc12345").
			WillReturnRows(sqlmock.NewRows([]string{"messages"}))

		msgs, err := repo.LoadSession(ctx, 1, "abc12345")
		require.NoError(t, err)
		assert.Empty(t, msgs)
		assert.NotNil(t, msgs)
	})

	t.Run("Query failure is a persistence error", func(t *testing.T) {
		repo, mockDB := setupMockRepo(t)
		mockDB.ExpectQuery(regexp.QuoteMeta("SELECT messages FROM chat_logs")).
			WillReturnError(errors.New("db down"))

		_, err := repo.LoadSession(ctx, 1, "abc12345")
		assert.ErrorIs(t, err, app_errors.ErrPersistence)
	})
}

func TestSQLRepository_SaveSession_UpsertsWholeTranscript(t *testing.T) {
	repo, mockDB := setupMockRepo(t)
	msgs := []model.Message{model.NewTextMessage(model.RoleUser, "hello")}

	mockDB.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id, session_id)")).
		WithArgs(int64(1), "abc12345", `[{"role":"user","content":"hello"}]`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SaveSession(context.Background(), 1, "abc12345", msgs))
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

// The tests below run against a real SQLite database with migrations applied.

func newSQLiteRepo(t *testing.T) repository.Repository {
	return repository.NewSQLRepository(dbtest.NewSQLite(t), repository.WithClock(steppingClock()))
}

func TestSQLRepository_SQLite_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewSQLite(t)
	repo := repository.NewSQLRepository(db)

	_, err := repo.CreateUser(ctx, "alice", "h1")
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, "alice", "h2")
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE username = 'alice'").Scan(&count))
	assert.Equal(t, 1, count)

	u, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h1", u.PasswordHash)
}

func TestSQLRepository_SQLite_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	userID, err := repo.CreateUser(ctx, "bob", "hash")
	require.NoError(t, err)

	transcript := []model.Message{
		model.NewTextMessage(model.RoleUser, "hello"),
		{Role: model.RoleUser, Content: model.PartsContent(
			model.TextPart("Please analyze this image."),
			model.ImagePart("data:image/png;base64,iVBORw0KGgo="),
		)},
		model.NewTextMessage(model.RoleAssistant, "It is a tiny PNG."),
	}
	require.NoError(t, repo.SaveSession(ctx, userID, "s1", transcript))

	loaded, err := repo.LoadSession(ctx, userID, "s1")
	require.NoError(t, err)
	assert.Equal(t, transcript, loaded)

	// Replacement is wholesale, not append-only.
	shorter := transcript[:1]
	require.NoError(t, repo.SaveSession(ctx, userID, "s1", shorter))
	loaded, err = repo.LoadSession(ctx, userID, "s1")
	require.NoError(t, err)
	assert.Equal(t, shorter, loaded)
}

func TestSQLRepository_SQLite_ListSessionsOrdering(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	userID, err := repo.CreateUser(ctx, "carol", "hash")
	require.NoError(t, err)
	otherID, err := repo.CreateUser(ctx, "dave", "hash")
	require.NoError(t, err)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.SaveSession(ctx, userID, id, []model.Message{model.NewTextMessage(model.RoleUser, id)}))
	}
	require.NoError(t, repo.SaveSession(ctx, otherID, "z", nil))

	sessions, err := repo.ListSessions(ctx, userID)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, []string{"c", "b", "a"}, sessionIDs(sessions))
	for i := 1; i < len(sessions); i++ {
		assert.True(t, sessions[i-1].UpdatedAt.After(sessions[i].UpdatedAt))
	}

	// Saving an existing session moves it to the front.
	require.NoError(t, repo.SaveSession(ctx, userID, "a", []model.Message{model.NewTextMessage(model.RoleUser, "again")}))
	sessions, err = repo.ListSessions(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "b"}, sessionIDs(sessions))
}

func TestSQLRepository_SQLite_LoadAllUserMessages(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	userID, err := repo.CreateUser(ctx, "erin", "hash")
	require.NoError(t, err)

	require.NoError(t, repo.SaveSession(ctx, userID, "first", []model.Message{
		model.NewTextMessage(model.RoleUser, "1"),
		model.NewTextMessage(model.RoleAssistant, "2"),
	}))
	require.NoError(t, repo.SaveSession(ctx, userID, "second", []model.Message{
		model.NewTextMessage(model.RoleUser, "3"),
	}))

	all, err := repo.LoadAllUserMessages(ctx, userID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "1", all[0].Content.Text)
	assert.Equal(t, "2", all[1].Content.Text)
	assert.Equal(t, "3", all[2].Content.Text)

	// Touching "first" makes it the most recently updated session.
	require.NoError(t, repo.SaveSession(ctx, userID, "first", []model.Message{
		model.NewTextMessage(model.RoleUser, "1"),
	}))
	all, err = repo.LoadAllUserMessages(ctx, userID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "3", all[0].Content.Text)
	assert.Equal(t, "1", all[1].Content.Text)

	none, err := repo.LoadAllUserMessages(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func sessionIDs(sessions []model.SessionSummary) []string {
	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

func TestSQLRepository_SaveSession_RejectsMalformedMessages(t *testing.T) {
	repo, mockDB := setupMockRepo(t)
	bad := []model.Message{{Role: "tool", Content: model.TextContent("x")}}

	err := repo.SaveSession(context.Background(), 1, "abc12345", bad)
	assert.ErrorIs(t, err, app_errors.ErrValidation)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestSQLRepository_LoadSession_RejectsMalformedStoredTranscript(t *testing.T) {
	repo, mockDB := setupMockRepo(t)
	mockDB.ExpectQuery(regexp.QuoteMeta("SELECT messages FROM chat_logs")).
		WithArgs(int64(1), "abc12345").
		WillReturnRows(sqlmock.NewRows([]string{"messages"}).
			AddRow([]byte(`[{"role":"user","content":[{"type":"image_url"}]}]`)))

	msgs, err := repo.LoadSession(context.Background(), 1, "abc12345")
	assert.ErrorIs(t, err, app_errors.ErrPersistence)
	assert.Nil(t, msgs)
}

func TestSQLRepository_SQLite_LoadAllUserMessages_RejectsMalformedRow(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewSQLite(t)
	repo := repository.NewSQLRepository(db)
	userID, err := repo.CreateUser(ctx, "frank", "hash")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		"INSERT INTO chat_logs (user_id, session_id, messages, updated_at) VALUES ($1, $2, $3, $4)",
		userID, "broken", `[{"role":"user","content":[{"type":"image_url"}]}]`, time.Now().UTC())
	require.NoError(t, err)

	_, err = repo.LoadAllUserMessages(ctx, userID)
	assert.ErrorIs(t, err, app_errors.ErrPersistence)
}
