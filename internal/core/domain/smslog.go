package domain

import "time"

// SMSType categorises parent notifications.
type SMSType string

// SMS types.
const (
	SMSTypeWelcome     SMSType = "welcome"
	SMSTypeProgress    SMSType = "progress"
	SMSTypeAchievement SMSType = "achievement"
	SMSTypeWeekly      SMSType = "weekly"
)

// SMSStatus is the delivery state of an SMS.
type SMSStatus string

// SMS statuses.
const (
	SMSStatusPending SMSStatus = "pending"
	SMSStatusSent    SMSStatus = "sent"
	SMSStatusFailed  SMSStatus = "failed"
)

// SMSLog records an SMS sent to a parent.
type SMSLog struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"studentId"`
	PhoneNumber string    `json:"phoneNumber"`
	Message     string    `json:"message"`
	Type        SMSType   `json:"type"`
	SentAt      time.Time `json:"sentAt"`
	Status      SMSStatus `json:"status"`
}

// SMSRequest asks the backend to send an SMS to a parent.
type SMSRequest struct {
	StudentID   string  `json:"studentId" validate:"required"`
	PhoneNumber string  `json:"phoneNumber" validate:"required,phone"`
	Message     string  `json:"message" validate:"required,max=480"`
	Type        SMSType `json:"type" validate:"omitempty,oneof=welcome progress achievement weekly"`
}
