package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamedocs.dev/interview-wizard/internal/wizard"
)

func TestWriteArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	records := []wizard.TurnRecord{
		{Question: "q1", Answer: "a1", Tags: []string{"genre"}},
		{Question: "q2", Answer: "", Tags: []string{}},
	}

	artifacts, err := WriteArtifacts(dir, "gdd-test", "# Doc\n", records)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "gdd-test.md"), artifacts.DocumentPath)
	assert.Equal(t, filepath.Join(dir, "gdd-test.json"), artifacts.LedgerPath)

	doc, err := os.ReadFile(artifacts.DocumentPath)
	require.NoError(t, err)
	assert.Equal(t, "# Doc\n", string(doc))

	ledgerJSON, err := os.ReadFile(artifacts.LedgerPath)
	require.NoError(t, err)

	var got []wizard.TurnRecord
	require.NoError(t, json.Unmarshal(ledgerJSON, &got))
	assert.Equal(t, records, got, "the sibling JSON round-trips the ledger order-preserving")
}

func TestWriteArtifactsCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	_, err := WriteArtifacts(dir, "gdd-x", "doc", []wizard.TurnRecord{})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "gdd-x.md"))
	assert.NoError(t, err)
}
