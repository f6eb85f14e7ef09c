package apperror

// Stable error codes returned to API clients.
const (
	CodeConflict             = "WAL_001"
	CodeNotFound             = "WAL_002"
	CodeUnsupportedNetwork   = "WAL_003"
	CodeUnsupportedOperation = "WAL_004"

	CodeInsufficientFunds    = "PAY_001"
	CodeInvalidAmount        = "PAY_002"
	CodeDuplicateTransaction = "PAY_003"
	CodeInvalidDestination   = "PAY_004"

	CodeRecipientNotFound       = "RCP_001"
	CodeRecipientWalletNotFound = "RCP_002"

	CodeAccountNotFound   = "LED_001"
	CodeLedgerRejected    = "LED_002"
	CodeLedgerUnavailable = "LED_003"

	CodeInvalidCredentials = "AUTH_001"
	CodeUsernameExists     = "AUTH_002"
	CodeUnauthenticated    = "AUTH_003"
	CodeEmailExists        = "AUTH_004"

	CodeProfileExists = "PRF_001"
	CodeHandleTaken   = "PRF_002"

	CodeValidation  = "REQ_001"
	CodeRateLimited = "RATE_001"

	CodeInternal    = "SYS_001"
	CodeLockTimeout = "SYS_002"
	CodeEncryption  = "SYS_003"
)
