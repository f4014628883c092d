package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gamedocs.dev/interview-wizard/internal/wizard"
)

// Artifacts names the files written for one generated document: the
// Markdown document and its sibling ledger JSON under the same base name.
type Artifacts struct {
	DocumentPath string `json:"document_path"`
	LedgerPath   string `json:"ledger_path"`
}

// WriteArtifacts writes `<base>.md` with the generated document and
// `<base>.json` with the serialized ledger into dir, creating it if
// needed.
func WriteArtifacts(dir, baseName, document string, records []wizard.TurnRecord) (*Artifacts, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export dir %s: %w", dir, err)
	}

	docPath := filepath.Join(dir, baseName+".md")
	if err := os.WriteFile(docPath, []byte(document), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write document file: %w", err)
	}

	ledgerJSON, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ledger: %w", err)
	}
	ledgerPath := filepath.Join(dir, baseName+".json")
	if err := os.WriteFile(ledgerPath, ledgerJSON, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write ledger file: %w", err)
	}

	return &Artifacts{DocumentPath: docPath, LedgerPath: ledgerPath}, nil
}
