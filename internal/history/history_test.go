package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *HistoryManager {
	t.Helper()
	manager, err := NewHistoryManager(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	return manager
}

func TestRecordAndInputs(t *testing.T) {
	manager := newTestManager(t)

	require.NoError(t, manager.Record("chat-1", "first input"))
	require.NoError(t, manager.Record("chat-1", "second input"))
	require.NoError(t, manager.Record("chat-2", "other chat"))

	inputs, err := manager.Inputs("chat-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"first input", "second input"}, inputs)
}

func TestLatestChatID(t *testing.T) {
	manager := newTestManager(t)

	require.NoError(t, manager.Record("chat-old", "hello"))
	// created_at has second-level ties without this on some platforms
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, manager.Record("chat-new", "hi"))

	chatID, err := manager.LatestChatID()
	require.NoError(t, err)
	assert.Equal(t, "chat-new", chatID)
}

func TestLatestChatID_Empty(t *testing.T) {
	manager := newTestManager(t)

	_, err := manager.LatestChatID()
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestInputs_UnknownChat(t *testing.T) {
	manager := newTestManager(t)

	inputs, err := manager.Inputs("nope")
	require.NoError(t, err)
	assert.Empty(t, inputs)
}
