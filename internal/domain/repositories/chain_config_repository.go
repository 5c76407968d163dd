package repositories

import (
	"context"

	"bridge-gate.backend/internal/domain/entities"
	"bridge-gate.backend/pkg/crosschain"
)

// ChainConfigRepository defines remote chain configuration operations
type ChainConfigRepository interface {
	Get(ctx context.Context, chainID crosschain.ChainID) (*entities.ChainConfig, error)
	GetAll(ctx context.Context) ([]*entities.ChainConfig, error)
	Upsert(ctx context.Context, cfg *entities.ChainConfig) error
}

// SettingsRepository stores the single row of global protocol settings
type SettingsRepository interface {
	// Get returns the stored settings, or the defaults when none were written yet
	Get(ctx context.Context) (*entities.ProtocolSettings, error)
	// Save persists settings and bumps their version
	Save(ctx context.Context, settings *entities.ProtocolSettings) error
}
