package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"bridge-gate.backend/internal/domain/entities"
	domainerrors "bridge-gate.backend/internal/domain/errors"
	"bridge-gate.backend/internal/domain/repositories"
	"bridge-gate.backend/internal/infrastructure/models"
	"bridge-gate.backend/pkg/crosschain"
	"bridge-gate.backend/pkg/utils"
)

type submissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *gorm.DB) repositories.SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) CreateSent(ctx context.Context, sub *entities.Submission) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}
	m := &models.SentSubmission{
		SubmissionID:    hashKey(sub.SubmissionID),
		DebridgeID:      hashKey(sub.DebridgeID),
		ChainIDFrom:     uint64(sub.ChainIDFrom),
		ChainIDTo:       uint64(sub.ChainIDTo),
		Amount:          amountColumn(sub.Amount),
		Receiver:        addressKey(sub.Receiver),
		Nonce:           sub.Nonce,
		Sender:          addressKey(sub.Sender),
		ExecutionFee:    amountColumn(sub.ExecutionFee),
		Flags:           sub.Flags,
		FallbackAddress: addressKey(sub.FallbackAddress),
		Data:            sub.Data,
		NativeSender:    addressKey(sub.NativeSender),
		ReferralCode:    sub.ReferralCode,
		NativeFee:       amountColumn(sub.NativeFee),
		AssetFee:        amountColumn(sub.AssetFee),
		CreatedAt:       sub.CreatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *submissionRepo) GetSent(ctx context.Context, id common.Hash) (*entities.Submission, error) {
	var m models.SentSubmission
	if err := GetDB(ctx, r.db).Where("submission_id = ?", hashKey(id)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return sentToEntity(&m)
}

func (r *submissionRepo) ListSent(ctx context.Context, sender crosschain.Address, pagination utils.PaginationParams) ([]*entities.Submission, int64, error) {
	base := func() *gorm.DB {
		q := GetDB(ctx, r.db).Model(&models.SentSubmission{})
		if !sender.IsEmpty() {
			q = q.Where("sender = ?", addressKey(sender))
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base().Order("created_at DESC")
	if pagination.Limit > 0 {
		query = query.Limit(pagination.Limit).Offset(pagination.CalculateOffset())
	}
	var ms []models.SentSubmission
	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	subs := make([]*entities.Submission, 0, len(ms))
	for i := range ms {
		s, err := sentToEntity(&ms[i])
		if err != nil {
			return nil, 0, err
		}
		subs = append(subs, s)
	}
	return subs, total, nil
}

func (r *submissionRepo) MarkClaimed(ctx context.Context, sub *entities.Submission) error {
	claimed, err := r.IsClaimed(ctx, sub.SubmissionID)
	if err != nil {
		return err
	}
	if claimed {
		return domainerrors.ErrAlreadyExists
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}
	m := &models.ClaimedSubmission{
		SubmissionID:    hashKey(sub.SubmissionID),
		DebridgeID:      hashKey(sub.DebridgeID),
		ChainIDFrom:     uint64(sub.ChainIDFrom),
		ChainIDTo:       uint64(sub.ChainIDTo),
		Amount:          amountColumn(sub.Amount),
		Receiver:        addressKey(sub.Receiver),
		Nonce:           sub.Nonce,
		ExecutionFee:    amountColumn(sub.ExecutionFee),
		Flags:           sub.Flags,
		FallbackAddress: addressKey(sub.FallbackAddress),
		Data:            sub.Data,
		NativeSender:    addressKey(sub.NativeSender),
		Submitter:       addressKey(sub.Submitter),
		CreatedAt:       sub.CreatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *submissionRepo) GetClaimed(ctx context.Context, id common.Hash) (*entities.Submission, error) {
	var m models.ClaimedSubmission
	if err := GetDB(ctx, r.db).Where("submission_id = ?", hashKey(id)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	amount, err := parseAmountColumn(m.Amount)
	if err != nil {
		return nil, err
	}
	fee, err := parseAmountColumn(m.ExecutionFee)
	if err != nil {
		return nil, err
	}
	return &entities.Submission{
		SubmissionID:    common.HexToHash(m.SubmissionID),
		DebridgeID:      common.HexToHash(m.DebridgeID),
		ChainIDFrom:     crosschain.ChainID(m.ChainIDFrom),
		ChainIDTo:       crosschain.ChainID(m.ChainIDTo),
		Amount:          amount,
		Receiver:        parseAddressColumn(m.Receiver),
		Nonce:           m.Nonce,
		ExecutionFee:    fee,
		Flags:           m.Flags,
		FallbackAddress: parseAddressColumn(m.FallbackAddress),
		Data:            m.Data,
		NativeSender:    parseAddressColumn(m.NativeSender),
		Submitter:       parseAddressColumn(m.Submitter),
		CreatedAt:       m.CreatedAt,
	}, nil
}

func (r *submissionRepo) IsClaimed(ctx context.Context, id common.Hash) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&models.ClaimedSubmission{}).
		Where("submission_id = ?", hashKey(id)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *submissionRepo) SetBlocked(ctx context.Context, id common.Hash, blocked bool) error {
	m := &models.BlockedSubmission{
		SubmissionID: hashKey(id),
		IsBlocked:    blocked,
		UpdatedAt:    time.Now(),
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "submission_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_blocked", "updated_at"}),
	}).Create(m).Error
}

func (r *submissionRepo) IsBlocked(ctx context.Context, id common.Hash) (bool, error) {
	var m models.BlockedSubmission
	if err := GetDB(ctx, r.db).Where("submission_id = ?", hashKey(id)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return m.IsBlocked, nil
}

func (r *submissionRepo) NextNonce(ctx context.Context, sender crosschain.Address) (uint64, error) {
	db := GetDB(ctx, r.db)
	key := addressKey(sender)

	var m models.SenderNonce
	err := db.Where("sender = ?", key).First(&m).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		m = models.SenderNonce{Sender: key, Nonce: 1, UpdatedAt: time.Now()}
		if err := db.Create(&m).Error; err != nil {
			return 0, err
		}
		return 0, nil
	case err != nil:
		return 0, err
	}

	current := m.Nonce
	if err := db.Model(&models.SenderNonce{}).
		Where("sender = ? AND nonce = ?", key, current).
		Updates(map[string]interface{}{"nonce": current + 1, "updated_at": time.Now()}).Error; err != nil {
		return 0, err
	}
	return current, nil
}

func sentToEntity(m *models.SentSubmission) (*entities.Submission, error) {
	amount, err := parseAmountColumn(m.Amount)
	if err != nil {
		return nil, err
	}
	execFee, err := parseAmountColumn(m.ExecutionFee)
	if err != nil {
		return nil, err
	}
	nativeFee, err := parseAmountColumn(m.NativeFee)
	if err != nil {
		return nil, err
	}
	assetFee, err := parseAmountColumn(m.AssetFee)
	if err != nil {
		return nil, err
	}
	return &entities.Submission{
		SubmissionID:    common.HexToHash(m.SubmissionID),
		DebridgeID:      common.HexToHash(m.DebridgeID),
		ChainIDFrom:     crosschain.ChainID(m.ChainIDFrom),
		ChainIDTo:       crosschain.ChainID(m.ChainIDTo),
		Amount:          amount,
		Receiver:        parseAddressColumn(m.Receiver),
		Nonce:           m.Nonce,
		Sender:          parseAddressColumn(m.Sender),
		ExecutionFee:    execFee,
		Flags:           m.Flags,
		FallbackAddress: parseAddressColumn(m.FallbackAddress),
		Data:            m.Data,
		NativeSender:    parseAddressColumn(m.NativeSender),
		ReferralCode:    m.ReferralCode,
		NativeFee:       nativeFee,
		AssetFee:        assetFee,
		CreatedAt:       m.CreatedAt,
	}, nil
}
