package repositories

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"bridge-gate.backend/internal/domain/entities"
)

// ConfirmationRepository defines oracle registry and confirmation storage
type ConfirmationRepository interface {
	// Add stores a confirmation; inserted is false when the oracle already confirmed
	Add(ctx context.Context, c *entities.Confirmation) (inserted bool, err error)
	ListConfirmers(ctx context.Context, version uint64, id common.Hash) ([]common.Address, error)

	GetOracle(ctx context.Context, addr common.Address) (*entities.Oracle, error)
	ListOracles(ctx context.Context) ([]*entities.Oracle, error)
	UpsertOracle(ctx context.Context, oracle *entities.Oracle) error
	DeleteOracle(ctx context.Context, addr common.Address) error

	GetAggregator(ctx context.Context, version uint64) (*entities.AggregatorVersion, error)
	UpsertAggregator(ctx context.Context, v *entities.AggregatorVersion) error
}
