package usecase

import (
	"context"

	"github.com/chainreport/indexerd/internal/domain"
)

// ListContracts returns the manifest's registered contracts, for the CLI
// table and the read-only listing endpoint.
type ListContracts struct {
	manifest ManifestStore
}

func NewListContracts(manifest ManifestStore) *ListContracts {
	return &ListContracts{manifest: manifest}
}

// ListContractsResult pairs the project name with its entries.
type ListContractsResult struct {
	Project   string
	Contracts []domain.ManifestContract
}

func (u *ListContracts) Execute(ctx context.Context) (*ListContractsResult, error) {
	project, err := u.manifest.ProjectName(ctx)
	if err != nil {
		return nil, err
	}
	contracts, err := u.manifest.Contracts(ctx)
	if err != nil {
		return nil, err
	}
	return &ListContractsResult{Project: project, Contracts: contracts}, nil
}
