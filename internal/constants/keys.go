package constants

const (
	KeyAppName       = "app"
	KeyBody          = "body"
	KeyCacheKey      = "cacheKey"
	KeyCart          = "cart"
	KeyCartItems     = "cartItems"
	KeyChannel       = "channel"
	KeyConfig        = "config"
	KeyEvent         = "event"
	KeyLineID        = "lineId"
	KeyOrder         = "order"
	KeyOrderID       = "orderId"
	KeyOrders        = "orders"
	KeyProcess       = "process"
	KeyProduct       = "product"
	KeyProductID     = "productId"
	KeyProducts      = "products"
	KeyRequest       = "request"
	KeyRequestHost   = "host"
	KeyRequestID     = "requestId"
	KeyRequestIp     = "requesterIP"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyRequestURL    = "requestURL"
	KeySessionID     = "sessionId"
	KeySpanID        = "spanId"
	KeyStatus        = "status"
	KeyTag           = "tag"
	KeyTraceID       = "traceId"
	KeyUserID        = "userId"
)
