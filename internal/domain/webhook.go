package domain

import "time"

// WebhookEvent is a verified webhook delivered by the platform
type WebhookEvent struct {
	ID         string
	Topic      string
	Shop       string
	Payload    []byte
	Verified   bool
	ReceivedAt time.Time
}

// Webhook topics handled by the app
const (
	TopicAppUninstalled = "app/uninstalled"
)
