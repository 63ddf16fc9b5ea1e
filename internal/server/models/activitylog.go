package models

// ActivityAction names an audited account change.
type ActivityAction string

const (
	ActionPasswordChange ActivityAction = "PASSWORD_CHANGE"
	ActionPasswordReset  ActivityAction = "PASSWORD_RESET"
	ActionProfileUpdate  ActivityAction = "PROFILE_UPDATE"
)

type ActivityLog struct {
	UserID    int64
	Action    ActivityAction
	Details   string
	IPAddress string
	UserAgent string
}
