package domain

const (
	RoleMember = "MEMBER"
	RoleAdmin  = "ADMIN"
)

const (
	QuotaActive       = "ACTIVE"
	QuotaContemplated = "CONTEMPLATED"
)

const (
	SendMethodWhatsApp = "whatsapp"
	SendMethodSMS      = "sms"
)

// Adjustment applied to a group's monthly value over time.
const (
	AdjustmentNone    = "NONE"
	AdjustmentFixed   = "FIXED"
	AdjustmentPercent = "PERCENT"
)

// Credential lifecycle policy defaults; see config.PolicyConfig for overrides.
const (
	DefaultMaxAccessAttempts  = 5
	DefaultLockoutMinutes     = 15
	DefaultExpirationDays     = 30
	DefaultTempPasswordLength = 12
	DefaultMinReveals         = 1
)
