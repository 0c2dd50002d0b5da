package constants

const (
	AppMainStorefront     = "storefront"
	AppStorefrontService  = "storefront-service"
	AudienceUser          = "user"
	DefaultCategory       = "default"
	MetadataKeyOrderID    = "order_id"
	MetadataKeyCategory   = "category"
	MetadataKeyCategories = "category_totals"
)
