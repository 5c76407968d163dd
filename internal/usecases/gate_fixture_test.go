package usecases

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bridge-gate.backend/internal/domain/entities"
	domainRepos "bridge-gate.backend/internal/domain/repositories"
	"bridge-gate.backend/internal/infrastructure/models"
	"bridge-gate.backend/internal/infrastructure/repositories"
	"bridge-gate.backend/pkg/crosschain"
)

const (
	localChain  crosschain.ChainID = 1
	remoteChain crosschain.ChainID = 56
)

var (
	gateAddr     = crosschain.MustParseAddress("0x00000000000000000000000000000000000000a1")
	callProxy    = crosschain.MustParseAddress("0x00000000000000000000000000000000000000a2")
	treasuryAddr = crosschain.MustParseAddress("0x00000000000000000000000000000000000000a3")
	wethToken    = crosschain.MustParseAddress("0x00000000000000000000000000000000000000e7")
	adminAddr    = crosschain.MustParseAddress("0x00000000000000000000000000000000000000ad")
	aliceAddr    = crosschain.MustParseAddress("0x0000000000000000000000000000000000000a11")
	bobAddr      = crosschain.MustParseAddress("0x0000000000000000000000000000000000000b0b")
	relayerAddr  = crosschain.MustParseAddress("0x0000000000000000000000000000000000000e1a")
	tokenUSD     = crosschain.MustParseAddress("0x0000000000000000000000000000000000005d00")
	remoteToken  = crosschain.MustParseAddress("0x000000000000000000000000000000000000f00d")
)

type stubMetadata struct {
	meta *entities.TokenMetadata
	err  error
}

func (s *stubMetadata) ReadMetadata(ctx context.Context, chainID crosschain.ChainID, token crosschain.Address) (*entities.TokenMetadata, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.meta, nil
}

type stubDeployer struct {
	calls int
}

func (s *stubDeployer) Deploy(ctx context.Context, debridgeID common.Hash, meta entities.TokenMetadata) (crosschain.Address, error) {
	s.calls++
	return crosschain.Address(debridgeID.Bytes()[12:]), nil
}

type stubSimulator struct {
	err   error
	froms []crosschain.Address
}

func (s *stubSimulator) SimulateCall(ctx context.Context, from, to crosschain.Address, data []byte) error {
	s.froms = append(s.froms, from)
	return s.err
}

type stubSignatures struct {
	blob []byte
	err  error
}

func (s *stubSignatures) FetchSignatures(ctx context.Context, id common.Hash) ([]byte, error) {
	return s.blob, s.err
}

type gateFixture struct {
	t   *testing.T
	ctx context.Context
	db  *gorm.DB

	gate          *Gate
	access        *AccessControl
	registry      *AssetRegistry
	confirmations *ConfirmationUsecase
	transfers     *TransferUsecase
	reserves      *ReserveUsecase
	orders        *OrderUsecase
	admin         *AdminUsecase
	messages      *MessageUsecase

	assetRepo    domainRepos.AssetRepository
	subRepo      domainRepos.SubmissionRepository
	chainRepo    domainRepos.ChainConfigRepository
	settingsRepo domainRepos.SettingsRepository
	ledgerRepo   domainRepos.LedgerRepository
	messageRepo  domainRepos.MessageRepository
	roleRepo     domainRepos.RoleRepository

	simulator  *stubSimulator
	deployer   *stubDeployer
	signatures *stubSignatures
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	return newGateFixtureOn(t, localChain)
}

// newGateFixtureOn builds a gate serving chainID with its own database
func newGateFixtureOn(t *testing.T, chainID crosschain.ChainID) *gateFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d_%d?mode=memory&cache=shared", t.Name(), chainID, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.AutoMigrate(db))

	f := &gateFixture{
		t:            t,
		ctx:          context.Background(),
		db:           db,
		assetRepo:    repositories.NewAssetRepository(db),
		subRepo:      repositories.NewSubmissionRepository(db),
		chainRepo:    repositories.NewChainConfigRepository(db),
		settingsRepo: repositories.NewSettingsRepository(db),
		ledgerRepo:   repositories.NewLedgerRepository(db),
		messageRepo:  repositories.NewMessageRepository(db),
		roleRepo:     repositories.NewRoleRepository(db),
		simulator:    &stubSimulator{},
		deployer:     &stubDeployer{},
		signatures:   &stubSignatures{},
	}
	confirmRepo := repositories.NewConfirmationRepository(db)
	orderRepo := repositories.NewOrderRepository(db)

	f.gate = NewGate(repositories.NewUnitOfWork(db), GateConfig{
		ChainID:            chainID,
		GateAddress:        gateAddr,
		CallProxyAddress:   callProxy,
		TreasuryAddress:    treasuryAddr,
		WrappedNativeToken: wethToken,
	})
	f.access = NewAccessControl(f.roleRepo)
	f.registry = NewAssetRegistry(f.gate, f.assetRepo, f.chainRepo, f.access,
		&stubMetadata{meta: &entities.TokenMetadata{Name: "Remote", Symbol: "RMT", Decimals: 18}}, f.deployer)
	f.confirmations = NewConfirmationUsecase(f.gate, confirmRepo, f.settingsRepo, f.access)
	configs := NewConfigLoader(f.settingsRepo, f.chainRepo, f.assetRepo)
	f.transfers = NewTransferUsecase(f.gate, f.registry, f.assetRepo, f.subRepo, f.chainRepo, f.messageRepo,
		f.ledgerRepo, f.confirmations, configs, NewLedgerCallProxy(f.ledgerRepo, callProxy, f.simulator), f.signatures)
	f.reserves = NewReserveUsecase(f.gate, f.assetRepo, f.ledgerRepo, f.access,
		NewTreasuryFeeProxy(f.ledgerRepo, gateAddr, treasuryAddr))
	f.orders = NewOrderUsecase(f.gate, orderRepo, f.messageRepo, f.ledgerRepo, f.access)
	f.admin = NewAdminUsecase(f.gate, f.settingsRepo, f.subRepo, f.roleRepo, f.ledgerRepo, f.access)
	f.messages = NewMessageUsecase(f.messageRepo)

	require.NoError(t, f.access.BootstrapAdmin(f.ctx, adminAddr))
	return f
}

// supportChain enables transfers to and from chain with the given fees
func (f *gateFixture) supportChain(chainID crosschain.ChainID, fixedNativeFee uint64, transferFeeBps uint64) {
	f.t.Helper()
	_, err := f.registry.UpdateChainSupport(f.ctx, adminAddr, UpdateChainSupportInput{
		ChainID:        chainID,
		IsSupported:    true,
		FixedNativeFee: uint256.NewInt(fixedNativeFee),
		TransferFeeBps: transferFeeBps,
	})
	require.NoError(f.t, err)
	require.NoError(f.t, f.registry.SetChainIDSupport(f.ctx, adminAddr, chainID, true, true))
}

func (f *gateFixture) fund(token, holder crosschain.Address, amount *uint256.Int) {
	f.t.Helper()
	require.NoError(f.t, f.admin.SetTokenBalance(f.ctx, adminAddr, token, holder, amount))
}

func (f *gateFixture) balance(token, holder crosschain.Address) *uint256.Int {
	f.t.Helper()
	bal, err := f.ledgerRepo.BalanceOf(f.ctx, token, holder)
	require.NoError(f.t, err)
	return bal
}

func (f *gateFixture) asset(id common.Hash) *entities.Asset {
	f.t.Helper()
	a, err := f.assetRepo.GetByID(f.ctx, id)
	require.NoError(f.t, err)
	return a
}

type testOracle struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

func (f *gateFixture) addOracle(required bool) testOracle {
	f.t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(f.t, err)
	o := testOracle{key: key, addr: crypto.PubkeyToAddress(key.PublicKey)}
	require.NoError(f.t, f.confirmations.AddOracle(f.ctx, adminAddr, o.addr, required))
	return o
}

func (f *gateFixture) sign(id common.Hash, oracles ...testOracle) []byte {
	f.t.Helper()
	var blob []byte
	for _, o := range oracles {
		sig, err := crosschain.Sign(id, o.key)
		require.NoError(f.t, err)
		blob = append(blob, sig...)
	}
	return blob
}

func (f *gateFixture) confirm(id common.Hash, oracles ...testOracle) {
	f.t.Helper()
	for _, o := range oracles {
		_, err := f.confirmations.RecordConfirmation(f.ctx, o.addr, id)
		require.NoError(f.t, err)
	}
}

// inboundID is the submission id a claim of input derives on this chain
func inboundID(t *testing.T, input ClaimInput) common.Hash {
	t.Helper()
	return inboundIDOn(t, localChain, input)
}

func inboundIDOn(t *testing.T, chainTo crosschain.ChainID, input ClaimInput) common.Hash {
	t.Helper()
	auto := input.AutoParams
	if auto.IsEmpty() {
		auto = nil
	}
	id, err := crosschain.SubmissionID(crosschain.SubmissionParams{
		DebridgeID:  input.DebridgeID,
		ChainIDFrom: input.ChainIDFrom,
		ChainIDTo:   chainTo,
		Amount:      input.Amount,
		Receiver:    input.Receiver,
		Nonce:       input.Nonce,
		AutoParams:  auto,
	})
	require.NoError(t, err)
	return id
}

var errBoom = errors.New("boom")

func u256(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

func ether(v uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(v), uint256.NewInt(1_000_000_000_000_000_000))
}
