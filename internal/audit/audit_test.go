package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditorLogAndEntries(t *testing.T) {
	a, err := Open(":memory:", nil)
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	a.Log(ctx, Entry{Operation: "analyze", Session: "s1", Detail: "clauses=2", Duration: 1500 * time.Millisecond})
	a.Log(ctx, Entry{Operation: "chat", Session: "s1", Outcome: "transport_failure"})

	entries, err := a.Entries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "chat", entries[0].Operation)
	assert.Equal(t, "transport_failure", entries[0].Outcome)
	assert.Equal(t, "analyze", entries[1].Operation)
	assert.Equal(t, OutcomeOK, entries[1].Outcome)
	assert.Equal(t, "clauses=2", entries[1].Detail)
	assert.Equal(t, 1500*time.Millisecond, entries[1].Duration)
	assert.False(t, entries[1].Timestamp.IsZero())
}

func TestAuditorLimit(t *testing.T) {
	a, err := Open(filepath.Join(t.TempDir(), "audit.db"), nil)
	require.NoError(t, err)
	defer a.Close()

	for range 5 {
		a.Log(context.Background(), Entry{Operation: "speech"})
	}
	entries, err := a.Entries(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestNilAuditorIsNoop(t *testing.T) {
	var a *Auditor
	a.Log(context.Background(), Entry{Operation: "analyze"})
	entries, err := a.Entries(context.Background(), 1)
	assert.NoError(t, err)
	assert.Nil(t, entries)
	a.Close()
}
