package model

import "time"

type ActivityAction string

const (
	ActivityRegister         ActivityAction = "REGISTER"
	ActivityLogin            ActivityAction = "LOGIN"
	ActivitySubscribe        ActivityAction = "SUBSCRIBE"
	ActivityPaymentNotified  ActivityAction = "PAYMENT_NOTIFIED"
	ActivityPaymentConfirmed ActivityAction = "PAYMENT_CONFIRMED"
	ActivityActivate         ActivityAction = "SUBSCRIPTION_ACTIVATED"
	ActivityDocumentUpload   ActivityAction = "DOCUMENT_UPLOAD"
	ActivityPasswordChange   ActivityAction = "PASSWORD_CHANGE"
)

type ActivityLog struct {
	ID        string
	UserID    *string
	Action    ActivityAction
	Details   string
	IP        string
	CreatedAt time.Time
}

// ActivityLogView adds the acting user for the admin console.
type ActivityLogView struct {
	*ActivityLog
	User *UserSummary
}
