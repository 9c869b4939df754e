package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"evoting-backend/blockchain"
	"evoting-backend/models"
)

func TestSaveLoadChain(t *testing.T) {
	store, err := NewJSONStore(t.TempDir())
	require.NoError(t, err)

	vc := blockchain.New(blockchain.Config{DifficultyPrefix: "0"})
	for i := 0; i < 3; i++ {
		_, err := vc.AppendBlock(map[string]any{
			"candidate": "Alice",
			"nullifier": fmt.Sprintf("nullifier-%d", i),
		})
		require.NoError(t, err)
	}

	require.NoError(t, store.SaveChain("election-a", vc.Blocks()))

	blocks, err := store.LoadChain("election-a")
	require.NoError(t, err)
	require.Len(t, blocks, 4)

	// The restored ledger must still pass both audits: serialization cannot
	// disturb the canonical digests.
	restored := blockchain.NewFromBlocks(blockchain.Config{DifficultyPrefix: "0"}, blocks)
	require.True(t, restored.ValidateChain())
	require.True(t, restored.ValidateUniqueNullifiers())
	require.Equal(t, vc.Tip().Hash, restored.Tip().Hash)
}

func TestLoadChainMissing(t *testing.T) {
	store, err := NewJSONStore(t.TempDir())
	require.NoError(t, err)

	blocks, err := store.LoadChain("no-such-election")
	require.NoError(t, err)
	require.Nil(t, blocks)
}

func TestLoadChainCorrupted(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONStore(dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "broken_chain.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err = store.LoadChain("broken")
	require.Error(t, err)
}

func TestSaveLoadReport(t *testing.T) {
	store, err := NewJSONStore(t.TempDir())
	require.NoError(t, err)

	report := &models.ElectionReport{
		ElectionID:       "election-a",
		EnrolledVoters:   3,
		HEBackend:        "toy-fhe",
		SignatureBackend: "Dilithium2",
		KEMBackend:       "Kyber512",
		ChainValid:       true,
		NullifiersUnique: true,
		Tally:            map[string]int64{"Alice": 2, "Bob": 1},
		GeneratedAt:      1700000000,
	}
	require.NoError(t, store.SaveReport("election-a", report))

	loaded, err := store.LoadReport("election-a")
	require.NoError(t, err)
	require.Equal(t, report, loaded)
}

func TestSeparateElectionsDoNotCollide(t *testing.T) {
	store, err := NewJSONStore(t.TempDir())
	require.NoError(t, err)

	first := blockchain.New(blockchain.Config{DifficultyPrefix: "0"})
	_, err = first.AppendBlock(map[string]any{"nullifier": "a"})
	require.NoError(t, err)
	second := blockchain.New(blockchain.Config{DifficultyPrefix: "0"})

	require.NoError(t, store.SaveChain("election-a", first.Blocks()))
	require.NoError(t, store.SaveChain("election-b", second.Blocks()))

	blocksA, err := store.LoadChain("election-a")
	require.NoError(t, err)
	blocksB, err := store.LoadChain("election-b")
	require.NoError(t, err)
	require.Len(t, blocksA, 2)
	require.Len(t, blocksB, 1)
}
