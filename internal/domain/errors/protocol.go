package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Category groups protocol failures by how a caller should react to them
type Category string

const (
	CategoryValidation    Category = "validation"
	CategoryPolicy        Category = "policy"
	CategoryReplay        Category = "replay"
	CategoryAuthorization Category = "authorization"
	CategoryArithmetic    Category = "arithmetic"
	CategoryNotFound      Category = "not_found"
)

// HTTPStatus maps a category onto the response status
func (c Category) HTTPStatus() int {
	switch c {
	case CategoryValidation:
		return http.StatusBadRequest
	case CategoryPolicy, CategoryArithmetic:
		return http.StatusUnprocessableEntity
	case CategoryReplay:
		return http.StatusConflict
	case CategoryAuthorization:
		return http.StatusForbidden
	case CategoryNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// ProtocolError is a named, categorized protocol failure. Values are sentinels; wrap them
// with fmt.Errorf("...: %w") to add detail and compare with errors.Is.
type ProtocolError struct {
	Category Category
	Code     string
	Message  string
}

func (e *ProtocolError) Error() string {
	return e.Message
}

// Wrapf attaches detail while keeping the sentinel comparable
func (e *ProtocolError) Wrapf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprintf(format, args...))
}

func newProtocolError(category Category, code, message string) *ProtocolError {
	return &ProtocolError{Category: category, Code: code, Message: message}
}

// Validation
var (
	ErrWrongTargetChain       = newProtocolError(CategoryValidation, "WRONG_TARGET_CHAIN", "wrong target chain")
	ErrWrongChainFrom         = newProtocolError(CategoryValidation, "WRONG_CHAIN_FROM", "wrong source chain")
	ErrAmountTooHigh          = newProtocolError(CategoryValidation, "AMOUNT_TOO_HIGH", "amount too high")
	ErrZeroAmount             = newProtocolError(CategoryValidation, "ZERO_AMOUNT", "amount must be positive")
	ErrInvalidAddressLength   = newProtocolError(CategoryValidation, "INVALID_ADDRESS_LENGTH", "invalid receiver address length")
	ErrNativeAsset            = newProtocolError(CategoryValidation, "NATIVE_ASSET", "asset is native to this chain")
	ErrInvalidSignatures      = newProtocolError(CategoryValidation, "INVALID_SIGNATURES", "malformed signatures")
	ErrInvalidPermit          = newProtocolError(CategoryValidation, "INVALID_PERMIT", "invalid permit signature")
	ErrPermitExpired          = newProtocolError(CategoryValidation, "PERMIT_EXPIRED", "permit expired")
	ErrInvalidParams          = newProtocolError(CategoryValidation, "INVALID_PARAMS", "invalid parameters")
	ErrWrongTakeChain         = newProtocolError(CategoryValidation, "WRONG_TAKE_CHAIN", "order take chain is not this chain")
	ErrWrongTakeAmount        = newProtocolError(CategoryValidation, "WRONG_TAKE_AMOUNT", "wrong take amount")
	ErrWrongCancelBeneficiary = newProtocolError(CategoryValidation, "WRONG_CANCEL_BENEFICIARY", "wrong cancel beneficiary")
	ErrNotAllowedEmptyBatch   = newProtocolError(CategoryValidation, "NOT_ALLOWED_EMPTY_BATCH", "empty batch is not allowed")
	ErrMixedGiveChains        = newProtocolError(CategoryValidation, "MIXED_GIVE_CHAINS", "batch orders must share the give chain")
	ErrInvalidPatch           = newProtocolError(CategoryValidation, "INVALID_PATCH", "patch may only decrease the take amount")
	ErrInvalidOrder           = newProtocolError(CategoryValidation, "INVALID_ORDER", "invalid order")
)

// Policy
var (
	ErrTransfersPaused       = newProtocolError(CategoryPolicy, "TRANSFERS_PAUSED", "transfers are paused")
	ErrAmountNotCoverFees    = newProtocolError(CategoryPolicy, "AMOUNT_NOT_COVER_FEES", "amount not cover fees")
	ErrNotConfirmed          = newProtocolError(CategoryPolicy, "NOT_CONFIRMED", "submission not confirmed")
	ErrAmountNotConfirmed    = newProtocolError(CategoryPolicy, "AMOUNT_NOT_CONFIRMED", "amount not confirmed")
	ErrSubmissionBlocked     = newProtocolError(CategoryPolicy, "SUBMISSION_BLOCKED", "blocked submission")
	ErrInsufficientLiquidity = newProtocolError(CategoryPolicy, "INSUFFICIENT_LIQUIDITY", "insufficient liquidity")
	ErrNotEnoughReserves     = newProtocolError(CategoryPolicy, "NOT_ENOUGH_RESERVES", "not enough reserves")
	ErrVersionTooHigh        = newProtocolError(CategoryPolicy, "VERSION_TOO_HIGH", "aggregator version too high")
	ErrInvalidAggregator     = newProtocolError(CategoryPolicy, "INVALID_AGGREGATOR", "invalid aggregator")
	ErrNotPaidFee            = newProtocolError(CategoryPolicy, "NOT_PAID_FEE", "not paid fee")
	ErrExternalCallFailed    = newProtocolError(CategoryPolicy, "EXTERNAL_CALL_FAILED", "external call failed")
	ErrIncorrectOrderState   = newProtocolError(CategoryPolicy, "INCORRECT_ORDER_STATE", "incorrect order state")
	ErrInsufficientBalance   = newProtocolError(CategoryPolicy, "INSUFFICIENT_BALANCE", "insufficient token balance")
	ErrNothingToWithdraw     = newProtocolError(CategoryPolicy, "NOTHING_TO_WITHDRAW", "no fees to withdraw")
)

// Replay
var (
	ErrSubmissionUsed        = newProtocolError(CategoryReplay, "SUBMISSION_USED", "submission already used")
	ErrOrderAlreadyFulfilled = newProtocolError(CategoryReplay, "ORDER_ALREADY_FULFILLED", "order already fulfilled")
	ErrOrderAlreadyCancelled = newProtocolError(CategoryReplay, "ORDER_ALREADY_CANCELLED", "order already cancelled")
	ErrAssetAlreadyExists    = newProtocolError(CategoryReplay, "ASSET_ALREADY_EXISTS", "asset already exists")
)

// Authorization
var (
	ErrAdminBadRole          = newProtocolError(CategoryAuthorization, "ADMIN_BAD_ROLE", "caller is not admin")
	ErrDefiControllerBadRole = newProtocolError(CategoryAuthorization, "DEFI_CONTROLLER_BAD_ROLE", "caller is not defi controller")
	ErrOracleBadRole         = newProtocolError(CategoryAuthorization, "ORACLE_BAD_ROLE", "caller is not a valid oracle")
	ErrNotAllowedTaker       = newProtocolError(CategoryAuthorization, "NOT_ALLOWED_TAKER", "taker is not allowed")
	ErrNotOrderAuthority     = newProtocolError(CategoryAuthorization, "NOT_ORDER_AUTHORITY", "caller is not the order authority")
	ErrNotUnlockAuthority    = newProtocolError(CategoryAuthorization, "NOT_UNLOCK_AUTHORITY", "caller is not the unlock authority")
)

// Arithmetic
var (
	ErrArithmeticOverflow               = newProtocolError(CategoryArithmetic, "ARITHMETIC_OVERFLOW", "arithmetic overflow")
	ErrArithmeticUnderflow              = newProtocolError(CategoryArithmetic, "ARITHMETIC_UNDERFLOW", "arithmetic underflow")
	ErrOverflowWhileApplyTakeOrderPatch = newProtocolError(CategoryArithmetic, "OVERFLOW_WHILE_APPLY_TAKE_ORDER_PATCH", "overflow while apply take order patch")
)

// Not found
var (
	ErrAssetNotFound      = newProtocolError(CategoryNotFound, "ASSET_NOT_FOUND", "asset not found")
	ErrOrderNotFound      = newProtocolError(CategoryNotFound, "ORDER_NOT_FOUND", "order not found")
	ErrChainNotFound      = newProtocolError(CategoryNotFound, "CHAIN_NOT_FOUND", "chain not configured")
	ErrSubmissionNotFound = newProtocolError(CategoryNotFound, "SUBMISSION_NOT_FOUND", "submission not found")
)

// CategoryOf returns the category of a protocol error anywhere in err's chain
func CategoryOf(err error) (Category, bool) {
	var p *ProtocolError
	if errors.As(err, &p) {
		return p.Category, true
	}
	return "", false
}
