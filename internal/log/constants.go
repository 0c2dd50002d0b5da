package log

const (
	KeyAppName       = "app"
	KeyRequestID     = "requestId"
	KeyProcess       = "process"
	KeyTag           = "tag"
	KeyConfig        = "config"
	KeyUserID        = "userId"
	KeyOrderID       = "orderId"
	KeyCartKey       = "cartKey"
	KeyCartItems     = "cartItems"
	KeyCategory      = "category"
	KeyDestination   = "destination"
	KeyAmount        = "amount"
	KeyAmountMinor   = "amountMinor"
	KeyEventID       = "eventId"
	KeyEventType     = "eventType"
	KeyTransferGroup = "transferGroup"
	KeyTransferID    = "transferId"
	KeyPhoneNumber   = "phoneNumber"
	KeyRequestBody   = "requestBody"
	KeyRequestHeader = "requestHeader"
	KeyRequestHost   = "host"
	KeyRequestIp     = "requesterIP"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyRequestURL    = "requestURL"
	KeyDbURL         = "dbUrl"
)
