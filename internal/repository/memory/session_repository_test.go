package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"info-seeker-be/internal/repository/contract"
	"info-seeker-be/pkg/store"
)

func TestSessionRepositorySaveGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(time.Minute)
	session := &store.Session{
		ID:       "s1",
		Status:   store.SessionRunning,
		StageLog: []store.StageResult{{Stage: "web_search", Status: store.StageCompleted}},
	}

	require.NoError(t, repo.Save(ctx, session))
	session.StageLog[0].Stage = "mutated"

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "web_search", got.StageLog[0].Stage)

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err = repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, contract.ErrSessionNotFound)
}

func TestSessionRepositoryExpires(t *testing.T) {
	repo := NewSessionRepository(20 * time.Millisecond)
	require.NoError(t, repo.Save(context.Background(), &store.Session{ID: "s1"}))

	assert.Eventually(t, func() bool {
		_, err := repo.Get(context.Background(), "s1")
		return err != nil
	}, time.Second, 10*time.Millisecond)
}
