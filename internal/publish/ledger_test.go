package publish

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/crosspost/internal/target"
)

func TestDeriveStatus(t *testing.T) {
	ok := Outcome{Success: true}
	bad := Outcome{Success: false}

	assert.Equal(t, StatusEmpty, DeriveStatus(nil))
	assert.Equal(t, StatusSuccess, DeriveStatus([]Outcome{ok, ok}))
	assert.Equal(t, StatusFailure, DeriveStatus([]Outcome{bad, bad}))
	assert.Equal(t, StatusPartial, DeriveStatus([]Outcome{ok, bad}))
	assert.Equal(t, StatusPartial, DeriveStatus([]Outcome{bad, ok, ok}))
}

func TestLedgerRejectsDuplicateCell(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Record(Outcome{AssetIndex: 0, Provider: target.ProviderPostiz, Success: true}))
	require.NoError(t, l.Record(Outcome{AssetIndex: 0, Provider: target.ProviderBlotato}))
	assert.Error(t, l.Record(Outcome{AssetIndex: 0, Provider: target.ProviderPostiz}))
	assert.Equal(t, 2, l.Len())
	assert.True(t, l.Entries()[0].Success, "first outcome is kept")
}

func TestLedgerConcurrentRecordKeepsCellOrder(t *testing.T) {
	l := NewLedger()
	var wg sync.WaitGroup
	for i := 9; i >= 0; i-- {
		for _, p := range []target.Provider{target.ProviderBlotato, target.ProviderPostiz} {
			wg.Add(1)
			go func(i int, p target.Provider) {
				defer wg.Done()
				assert.NoError(t, l.Record(Outcome{AssetIndex: i, Provider: p, AssetName: fmt.Sprintf("a%d", i)}))
			}(i, p)
		}
	}
	wg.Wait()

	entries := l.Entries()
	require.Len(t, entries, 20)
	for i, e := range entries {
		assert.Equal(t, i/2, e.AssetIndex)
		want := target.ProviderPostiz
		if i%2 == 1 {
			want = target.ProviderBlotato
		}
		assert.Equal(t, want, e.Provider)
	}
}

func TestLedgerNotes(t *testing.T) {
	l := NewLedger()
	l.Note("first")
	notes := l.Notes()
	notes[0] = "mutated"
	assert.Equal(t, []string{"first"}, l.Notes())
}
