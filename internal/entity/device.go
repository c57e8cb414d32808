package entity

import "time"

// DeviceSession identifies an anonymous client device. There are no user
// accounts; the token only scopes history records to the device that made them.
type DeviceSession struct {
	ID         string    `json:"id"`
	Platform   string    `json:"platform"`
	AppVersion string    `json:"app_version"`
	CreatedAt  time.Time `json:"created_at"`
}
