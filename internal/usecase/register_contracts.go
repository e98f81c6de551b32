package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/chainreport/indexerd/internal/domain"
)

// RegisterContracts coordinates a batch of registration requests:
// validate and process each item, deduplicate by internal identifier,
// commit the survivors to the manifest and artifact store as a unit, and
// restart the indexer so the new configuration takes effect.
type RegisterContracts struct {
	mapping   MappingStore
	manifest  ManifestStore
	artifacts ArtifactStore
	indexer   IndexerSupervisor
	log       *slog.Logger
}

// NewRegisterContracts creates the batch registration use case.
func NewRegisterContracts(
	mapping MappingStore,
	manifest ManifestStore,
	artifacts ArtifactStore,
	indexer IndexerSupervisor,
	log *slog.Logger,
) *RegisterContracts {
	return &RegisterContracts{
		mapping:   mapping,
		manifest:  manifest,
		artifacts: artifacts,
		indexer:   indexer,
		log:       log,
	}
}

// RegisterContractsResult is the batch-level outcome. Results always has
// one element per input item, in input order. Err carries the
// commit-stage failure, if any, for callers that branch on error kind;
// Error is its rendered form.
type RegisterContractsResult struct {
	Success bool
	Results []domain.RegistrationResult
	Error   string
	Err     error
}

// processed carries the records built for one successful item.
type processed struct {
	entry    domain.ManifestContract
	artifact domain.AbiArtifact
}

// Execute runs the batch. Size violations reject the whole batch up
// front with zero side effects; per-item failures never abort it.
func (u *RegisterContracts) Execute(ctx context.Context, reqs []domain.RegistrationRequest) (*RegisterContractsResult, error) {
	if len(reqs) == 0 {
		return nil, domain.ErrNoContracts
	}
	if len(reqs) > domain.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d contracts exceeds the maximum of %d",
			domain.ErrBatchTooLarge, len(reqs), domain.MaxBatchSize)
	}

	results := make([]domain.RegistrationResult, 0, len(reqs))

	// Survivors keyed by indexer ID; later items sharing an ID replace
	// earlier ones (last write wins within the batch) while order of
	// first appearance is kept.
	var order []string
	survivors := make(map[string]processed)

	for _, req := range reqs {
		res := u.processOne(ctx, req, survivors, &order)
		results = append(results, res)
	}

	succeeded := lo.CountBy(results, func(r domain.RegistrationResult) bool { return r.Success })
	if succeeded == 0 {
		return &RegisterContractsResult{
			Success: false,
			Results: results,
			Error:   "no contracts were successfully processed",
		}, nil
	}

	entries := lo.Map(order, func(id string, _ int) domain.ManifestContract {
		return survivors[id].entry
	})
	artifacts := lo.Map(order, func(id string, _ int) domain.AbiArtifact {
		return survivors[id].artifact
	})

	if err := u.manifest.Merge(ctx, entries); err != nil {
		u.log.Error("manifest merge failed", "error", err, "entries", len(entries))
		serr := &domain.StorageError{Op: "manifest merge", Err: err}
		return &RegisterContractsResult{
			Success: false,
			Results: results,
			Error:   serr.Error(),
			Err:     serr,
		}, nil
	}

	if err := u.artifacts.WriteAll(ctx, artifacts); err != nil {
		u.log.Error("abi artifact write failed", "error", err, "artifacts", len(artifacts))
		serr := &domain.StorageError{Op: "abi write", Err: err}
		return &RegisterContractsResult{
			Success: false,
			Results: results,
			Error:   serr.Error(),
			Err:     serr,
		}, nil
	}

	// Process failures are logged and absorbed: the registration itself
	// has committed, and the supervisor will recover the handle.
	if err := u.indexer.Restart(ctx); err != nil {
		u.log.Error("indexer restart failed", "error", err)
	}

	return &RegisterContractsResult{Success: true, Results: results}, nil
}

// processOne validates one request, resolves its internal identifier and
// builds the manifest entry and artifact record. No manifest or file
// writes happen here; those are committed once per batch.
func (u *RegisterContracts) processOne(
	ctx context.Context,
	req domain.RegistrationRequest,
	survivors map[string]processed,
	order *[]string,
) domain.RegistrationResult {
	if verr := domain.ValidateRegistration(req); verr != nil {
		return domain.RegistrationResult{
			Contract: req.Name,
			Success:  false,
			Error:    verr.Error(),
		}
	}

	id, created, err := u.mapping.ResolveOrCreate(ctx, req.CompositeKey())
	if err != nil {
		u.log.Error("identifier resolution failed",
			"contract", req.Name, "report_id", req.ReportID, "error", err)
		return domain.RegistrationResult{
			Contract: req.Name,
			Success:  false,
			Error:    (&domain.StorageError{Op: "identifier resolution", Err: err}).Error(),
		}
	}

	outcome := domain.OutcomeUpdated
	if created {
		outcome = domain.OutcomeInserted
	}

	if _, seen := survivors[id]; !seen {
		*order = append(*order, id)
	}
	survivors[id] = processed{
		entry: domain.ManifestContract{
			Name: id,
			Details: []domain.NetworkDetail{{
				Network:    req.Network,
				Address:    req.Address,
				StartBlock: req.StartBlock,
			}},
			// Relative to the manifest directory so the document stays
			// portable.
			Abi: "./abis/" + domain.AbiFileName(id),
		},
		artifact: domain.AbiArtifact{IndexerID: id, JSON: []byte(req.Abi)},
	}

	return domain.RegistrationResult{
		Contract: req.Name,
		Success:  true,
		Message:  fmt.Sprintf("contract %s with indexer id %s", outcome, id),
	}
}
