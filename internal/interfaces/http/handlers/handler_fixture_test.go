package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bridge-gate.backend/internal/domain/entities"
	"bridge-gate.backend/internal/infrastructure/models"
	"bridge-gate.backend/internal/infrastructure/repositories"
	"bridge-gate.backend/internal/interfaces/http/middleware"
	"bridge-gate.backend/internal/usecases"
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
	adminAddr    = crosschain.MustParseAddress("0x00000000000000000000000000000000000000ad")
	aliceAddr    = crosschain.MustParseAddress("0x0000000000000000000000000000000000000a11")
	bobAddr      = crosschain.MustParseAddress("0x0000000000000000000000000000000000000b0b")
	tokenUSD     = crosschain.MustParseAddress("0x0000000000000000000000000000000000005d00")
)

const callerHeader = "X-Test-Caller"

type metadataStub struct{}

func (metadataStub) ReadMetadata(ctx context.Context, chainID crosschain.ChainID, token crosschain.Address) (*entities.TokenMetadata, error) {
	return &entities.TokenMetadata{Name: "Test", Symbol: "TST", Decimals: 18}, nil
}

type deployerStub struct{}

func (deployerStub) Deploy(ctx context.Context, debridgeID common.Hash, meta entities.TokenMetadata) (crosschain.Address, error) {
	return crosschain.Address(debridgeID.Bytes()[12:]), nil
}

type simulatorStub struct{}

func (simulatorStub) SimulateCall(ctx context.Context, from, to crosschain.Address, data []byte) error {
	return nil
}

type signaturesStub struct {
	blob []byte
	err  error
}

func (s *signaturesStub) FetchSignatures(ctx context.Context, id common.Hash) ([]byte, error) {
	return s.blob, s.err
}

type handlerFixture struct {
	t      *testing.T
	router *gin.Engine

	registry      *usecases.AssetRegistry
	transfers     *usecases.TransferUsecase
	confirmations *usecases.ConfirmationUsecase
	orders        *usecases.OrderUsecase
	admin         *usecases.AdminUsecase
	signatures    *signaturesStub
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.AutoMigrate(db))

	assetRepo := repositories.NewAssetRepository(db)
	subRepo := repositories.NewSubmissionRepository(db)
	chainRepo := repositories.NewChainConfigRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)
	ledgerRepo := repositories.NewLedgerRepository(db)
	messageRepo := repositories.NewMessageRepository(db)
	roleRepo := repositories.NewRoleRepository(db)

	gate := usecases.NewGate(repositories.NewUnitOfWork(db), usecases.GateConfig{
		ChainID:          localChain,
		GateAddress:      gateAddr,
		CallProxyAddress: callProxy,
		TreasuryAddress:  treasuryAddr,
	})
	access := usecases.NewAccessControl(roleRepo)
	f := &handlerFixture{t: t, signatures: &signaturesStub{}}
	f.registry = usecases.NewAssetRegistry(gate, assetRepo, chainRepo, access, metadataStub{}, deployerStub{})
	f.confirmations = usecases.NewConfirmationUsecase(gate, repositories.NewConfirmationRepository(db), settingsRepo, access)
	f.transfers = usecases.NewTransferUsecase(gate, f.registry, assetRepo, subRepo, chainRepo, messageRepo, ledgerRepo,
		f.confirmations, usecases.NewConfigLoader(settingsRepo, chainRepo, assetRepo),
		usecases.NewLedgerCallProxy(ledgerRepo, callProxy, simulatorStub{}), f.signatures)
	reserves := usecases.NewReserveUsecase(gate, assetRepo, ledgerRepo, access,
		usecases.NewTreasuryFeeProxy(ledgerRepo, gateAddr, treasuryAddr))
	f.orders = usecases.NewOrderUsecase(gate, repositories.NewOrderRepository(db), messageRepo, ledgerRepo, access)
	f.admin = usecases.NewAdminUsecase(gate, settingsRepo, subRepo, roleRepo, ledgerRepo, access)
	require.NoError(t, access.BootstrapAdmin(context.Background(), adminAddr))

	transfer := NewTransferHandler(f.transfers, reserves)
	confirmation := NewConfirmationHandler(f.confirmations)
	asset := NewAssetHandler(f.registry)
	order := NewOrderHandler(f.orders)
	admin := NewAdminHandler(f.admin)
	message := NewMessageHandler(usecases.NewMessageUsecase(messageRepo))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if raw := c.GetHeader(callerHeader); raw != "" {
			c.Set(middleware.CallerAddressKey, crosschain.MustParseAddress(raw))
		}
		c.Next()
	})
	v1 := r.Group("/api/v1")
	v1.POST("/transfers/send", transfer.Send)
	v1.POST("/transfers/burn", transfer.Burn)
	v1.POST("/transfers/claim", transfer.Claim)
	v1.GET("/submissions", transfer.ListSubmissions)
	v1.GET("/submissions/:id", transfer.GetSubmission)
	v1.POST("/reserves/request", transfer.RequestReserves)
	v1.POST("/reserves/return", transfer.ReturnReserves)
	v1.POST("/confirmations/:id", confirmation.Confirm)
	v1.GET("/confirmations/:id", confirmation.GetTally)
	v1.GET("/oracles", confirmation.ListOracles)
	v1.GET("/assets", asset.ListAssets)
	v1.GET("/assets/:id", asset.GetAsset)
	v1.POST("/assets", asset.RegisterAsset)
	v1.GET("/chains", asset.ListChains)
	v1.POST("/orders/id", order.ComputeOrderID)
	v1.GET("/orders/:id", order.GetOrder)
	v1.POST("/orders/fulfill", order.FulfillOrder)
	v1.POST("/orders/cancel", order.CancelOrder)
	v1.POST("/orders/unlock", order.SendUnlock)
	v1.POST("/orders/patch", order.PatchTakeOrder)
	v1.GET("/settings", admin.GetSettings)
	v1.GET("/balances/:holder", admin.GetBalances)
	v1.GET("/roles/:address", admin.GetRoles)
	v1.GET("/messages", message.ListMessages)

	adm := v1.Group("/admin")
	adm.PUT("/pause", admin.SetPaused)
	adm.PUT("/flash-fee", admin.SetFlashFee)
	adm.PUT("/global-fees", admin.SetGlobalFees)
	adm.PUT("/balances", admin.SetTokenBalance)
	adm.PUT("/defi-controllers", admin.SetDefiController)
	adm.POST("/transfer", admin.TransferAdmin)
	adm.PUT("/submissions/:id/block", admin.BlockSubmission)
	adm.PUT("/chains/:chainId", asset.UpdateChainSupport)
	adm.PUT("/chains/:chainId/direction", asset.SetChainDirection)
	adm.POST("/assets", asset.DeployAsset)
	adm.PUT("/assets/:id", asset.UpdateAsset)
	adm.PUT("/assets/:id/fees/:chainId", asset.UpdateAssetFixedFee)
	adm.POST("/assets/:id/withdraw-fee", transfer.WithdrawFee)
	adm.PUT("/confirmations/params", confirmation.SetParams)
	adm.POST("/oracles", confirmation.AddOracle)
	adm.PUT("/oracles/:address", confirmation.UpdateOracle)
	adm.DELETE("/oracles/:address", confirmation.RemoveOracle)
	adm.POST("/aggregators", confirmation.SetAggregator)
	adm.PUT("/aggregators/:version", confirmation.ManageOldAggregator)
	adm.PUT("/order-sources/:chainId", order.SetAuthorizedSrcContract)

	f.router = r
	return f
}

// do sends a JSON request as caller (nil caller means unauthenticated)
func (f *handlerFixture) do(method, path string, caller crosschain.Address, body interface{}) *httptest.ResponseRecorder {
	f.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if caller != nil {
		req.Header.Set(callerHeader, caller.String())
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// supportRemote enables transfers with remoteChain, charging a fixed native fee of 10
// and 10 bps
func (f *handlerFixture) supportRemote() {
	f.t.Helper()
	ctx := context.Background()
	_, err := f.registry.UpdateChainSupport(ctx, adminAddr, usecases.UpdateChainSupportInput{
		ChainID:        remoteChain,
		IsSupported:    true,
		FixedNativeFee: uint256.NewInt(10),
		TransferFeeBps: 10,
	})
	require.NoError(f.t, err)
	require.NoError(f.t, f.registry.SetChainIDSupport(ctx, adminAddr, remoteChain, true, true))
}

func (f *handlerFixture) fund(token, holder crosschain.Address, amount uint64) {
	f.t.Helper()
	require.NoError(f.t, f.admin.SetTokenBalance(context.Background(), adminAddr, token, holder, uint256.NewInt(amount)))
}
