package repositories

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"bridge-gate.backend/internal/domain/entities"
	"bridge-gate.backend/pkg/crosschain"
)

// OrderRepository defines destination-side order state storage
type OrderRepository interface {
	GetState(ctx context.Context, id common.Hash) (*entities.OrderTakeState, error)
	CreateState(ctx context.Context, state *entities.OrderTakeState) error
	UpdateState(ctx context.Context, state *entities.OrderTakeState) error

	GetPatch(ctx context.Context, id common.Hash) (*entities.OrderTakePatch, error)
	SavePatch(ctx context.Context, patch *entities.OrderTakePatch) error

	GetAuthorizedSrc(ctx context.Context, chainID crosschain.ChainID) (*entities.AuthorizedSrcContract, error)
	SaveAuthorizedSrc(ctx context.Context, c *entities.AuthorizedSrcContract) error
}
