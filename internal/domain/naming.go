package domain

import "strings"

// SchemaName returns the Postgres schema the indexer writes a contract's
// event tables into: the lowercased project name joined to the internal
// identifier with an underscore. Spaces and dashes in the project name
// are folded to underscores so the result is a bare identifier.
func SchemaName(projectName, indexerID string) string {
	p := strings.ToLower(strings.TrimSpace(projectName))
	p = strings.NewReplacer(" ", "_", "-", "_").Replace(p)
	return p + "_" + strings.ToLower(indexerID)
}

// AbiFileName is the deterministic artifact filename for an internal
// identifier.
func AbiFileName(indexerID string) string {
	return indexerID + ".abi.json"
}
