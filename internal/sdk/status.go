package sdk

// Status is the result code every SDK callback reports.
type Status string

const (
	StatusSuccess              Status = "SUCCESS"
	StatusErrorPublishableKey  Status = "ERROR_PUBLISHABLE_KEY"
	StatusErrorPermissions     Status = "ERROR_PERMISSIONS"
	StatusErrorLocation        Status = "ERROR_LOCATION"
	StatusErrorBluetooth       Status = "ERROR_BLUETOOTH"
	StatusErrorNetwork         Status = "ERROR_NETWORK"
	StatusErrorBadRequest      Status = "ERROR_BAD_REQUEST"
	StatusErrorUnauthorized    Status = "ERROR_UNAUTHORIZED"
	StatusErrorPaymentRequired Status = "ERROR_PAYMENT_REQUIRED"
	StatusErrorForbidden       Status = "ERROR_FORBIDDEN"
	StatusErrorNotFound        Status = "ERROR_NOT_FOUND"
	StatusErrorRateLimit       Status = "ERROR_RATE_LIMIT"
	StatusErrorServer          Status = "ERROR_SERVER"
	StatusErrorUnknown         Status = "ERROR_UNKNOWN"
)

func (s Status) String() string { return string(s) }

func (s Status) OK() bool { return s == StatusSuccess }
