package constants

// Operation statuses as persisted and returned on the wire.
const (
	OperationStatusPending          = "pending"
	OperationStatusRequireDeposit   = "require_deposit"
	OperationStatusWaitingPayment   = "waiting_payment"
	OperationStatusPartialDeposit   = "partial_deposit"
	OperationStatusDepositConfirmed = "deposit_confirmed"
	OperationStatusCompleted        = "completed"
	OperationStatusFailed           = "failed"
	OperationStatusCancelled        = "cancelled"
)

// Operation kinds.
const (
	OperationKindMint = "mint"
	OperationKindBurn = "burn"
)

// Stablecoin statuses.
const (
	StablecoinStatusPending        = "pending"
	StablecoinStatusRequireDeposit = "require_deposit"
	StablecoinStatusWaitingPayment = "waiting_payment"
	StablecoinStatusActive         = "active"
	StablecoinStatusInactive       = "inactive"
)

// Deposit types accepted on mint requests. Only on-ledger XRP collateral is
// reconciled by this service.
const (
	DepositTypeXRP   = "XRP"
	DepositTypePIX   = "PIX"
	DepositTypeRLUSD = "RLUSD"
)

// Outcome event names.
const (
	EventMintCompleted = "mint.completed"
	EventBurnCompleted = "burn.completed"
)

// UnknownDepositor marks a deposit whose sender could not be observed,
// e.g. one detected by balance polling.
const UnknownDepositor = "unknown"

// PollingTxPrefix prefixes the synthetic transaction id of polled deposits.
const PollingTxPrefix = "polling:"
