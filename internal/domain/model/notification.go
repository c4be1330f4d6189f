package model

import "time"

type NotificationType string

const (
	NotificationTypeMessage      NotificationType = "MESSAGE"
	NotificationTypeDocument     NotificationType = "DOCUMENT"
	NotificationTypePayment      NotificationType = "PAYMENT"
	NotificationTypeSubscription NotificationType = "SUBSCRIPTION"
	NotificationTypeSystem       NotificationType = "SYSTEM"
)

// Notification is an in-app record. Nothing is pushed anywhere.
type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Title     string
	Body      string
	Link      string
	IsRead    bool
	CreatedAt time.Time
}
