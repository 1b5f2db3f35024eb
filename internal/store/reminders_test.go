package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderPruneRemovesOldTriggered(t *testing.T) {
	s := NewReminderStore(newTestKV(t))

	old, err := s.Add("water the plants", time.Now().Add(-48*time.Hour))
	require.NoError(t, err)
	require.NoError(t, s.MarkTriggered(old.ID))

	recent, err := s.Add("stretch", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, s.MarkTriggered(recent.ID))

	pending, err := s.Add("call the bank", time.Now().Add(time.Hour))
	require.NoError(t, err)

	pruned, err := s.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	all, err := s.List()
	require.NoError(t, err)
	require.Len(t, all, 2)
	ids := []string{all[0].ID, all[1].ID}
	assert.Contains(t, ids, recent.ID)
	assert.Contains(t, ids, pending.ID)
}

func TestReminderPruneKeepsPendingEvenWhenOverdue(t *testing.T) {
	s := NewReminderStore(newTestKV(t))

	overdue, err := s.Add("submit the form", time.Now().Add(-72*time.Hour))
	require.NoError(t, err)

	pruned, err := s.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, pruned)

	pending, err := s.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, overdue.ID, pending[0].ID)
}
