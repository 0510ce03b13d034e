package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PromptRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPromptRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestSaveCommitsPromptAndGenres(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO prompts").
		WithArgs(sqlmock.AnyArg(), "user-1", "T", "C", "Easy", 500, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO prompt_genres").
		WithArgs(sqlmock.AnyArg(), "Fantasy").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO prompt_genres").
		WithArgs(sqlmock.AnyArg(), "Science Fiction").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Save(context.Background(), &SavedPrompt{
		UserID:     "user-1",
		Title:      "T",
		Content:    "C",
		Difficulty: "Easy",
		WordCount:  500,
		Genres:     []string{"Fantasy", "Science Fiction"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRollsBackWhenGenreInsertFails(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO prompts").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO prompt_genres").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.Save(context.Background(), &SavedPrompt{
		UserID: "user-1",
		Title:  "T",
		Genres: []string{"Fantasy"},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRollsBackWhenPromptInsertFails(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO prompts").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Save(context.Background(), &SavedPrompt{UserID: "user-1", Title: "T"})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOlderThan(t *testing.T) {
	repo, mock := newMockRepo(t)

	cutoff := time.Now().Add(-180 * 24 * time.Hour)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM prompt_genres").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("DELETE FROM prompts").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	deleted, err := repo.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUser(t *testing.T) {
	repo, mock := newMockRepo(t)

	created := time.Now().UTC()
	mock.ExpectQuery("SELECT id, user_id, title, content, difficulty, word_count, created_at").
		WithArgs("user-1", 50).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "title", "content", "difficulty", "word_count", "created_at"}).
			AddRow("p1", "user-1", "T", "C", "Easy", 500, created))
	mock.ExpectQuery("SELECT genre FROM prompt_genres").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"genre"}).AddRow("Fantasy"))

	prompts, err := repo.ListByUser(context.Background(), "user-1", 0)
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Equal(t, "T", prompts[0].Title)
	assert.Equal(t, []string{"Fantasy"}, prompts[0].Genres)
}
