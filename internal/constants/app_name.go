package constants

const (
	AppStorefront          = "storefront"
	AppNotificationService = "notification-service"
	AppUserService         = "user-service"
	AudienceUser           = "audience-user"
)
