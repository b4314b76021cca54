package models

import "time"

const (
	NotificationAccountVerified       = "account_verified"
	NotificationAccountRejected       = "account_rejected"
	NotificationSubscriptionCancelled = "subscription_cancelled"
	NotificationSubscriptionCreated   = "subscription_created"
)

type Notification struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Data      JSONMap    `json:"data"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at"`
}
