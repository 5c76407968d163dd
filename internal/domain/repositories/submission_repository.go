package repositories

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"bridge-gate.backend/internal/domain/entities"
	"bridge-gate.backend/pkg/crosschain"
	"bridge-gate.backend/pkg/utils"
)

// SubmissionRepository defines sent/claimed submission records and the replay set
type SubmissionRepository interface {
	CreateSent(ctx context.Context, sub *entities.Submission) error
	GetSent(ctx context.Context, id common.Hash) (*entities.Submission, error)
	ListSent(ctx context.Context, sender crosschain.Address, pagination utils.PaginationParams) ([]*entities.Submission, int64, error)

	// MarkClaimed appends to the used set; ErrAlreadyExists when the id is already there
	MarkClaimed(ctx context.Context, sub *entities.Submission) error
	GetClaimed(ctx context.Context, id common.Hash) (*entities.Submission, error)
	IsClaimed(ctx context.Context, id common.Hash) (bool, error)

	SetBlocked(ctx context.Context, id common.Hash, blocked bool) error
	IsBlocked(ctx context.Context, id common.Hash) (bool, error)

	// NextNonce returns the sender's next nonce and advances the counter
	NextNonce(ctx context.Context, sender crosschain.Address) (uint64, error)
}
