package constants

import "time"

const (
	// DefaultDepositTolerance absorbs transfer fees taken en route.
	DefaultDepositTolerance = "0.00005"
	// DefaultRefundDustThreshold is the smallest refund worth submitting.
	DefaultRefundDustThreshold = "0.000001"
	// DefaultActivationStakeXRP funds a fresh collection wallet.
	DefaultActivationStakeXRP = "1"
	// MinWalletRetirementLedgerAge is the ledger's own AccountDelete floor.
	MinWalletRetirementLedgerAge = 256
	DefaultPollInterval          = 5 * time.Second
	DefaultLedgerSweepInterval   = 4 * time.Second
	DefaultUSDBRLRate            = "5.25"
	DefaultXRPBRLRate            = "28.5"
	DefaultRPCRateLimit          = 10
	DefaultPort                  = "3000"
	DefaultReturnAsset           = "USD"
)

// XRPL network endpoints.
const (
	NetworkTestnet = "testnet"
	NetworkMainnet = "mainnet"

	TestnetRPCURL = "https://s.altnet.rippletest.net:51234"
	TestnetWSURL  = "wss://s.altnet.rippletest.net:51233"
	MainnetRPCURL = "https://s2.ripple.com:51234"
	MainnetWSURL  = "wss://s2.ripple.com:443"
)
