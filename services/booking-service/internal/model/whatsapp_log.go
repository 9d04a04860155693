package model

import "time"

type MessageType string

const (
	MessageAppointmentConfirmation MessageType = "APPOINTMENT_CONFIRMATION"
	MessageReminder                MessageType = "REMINDER"
	MessageTest                    MessageType = "TEST"
	MessageCustom                  MessageType = "CUSTOM"
)

type MessageStatus string

const (
	MessagePending   MessageStatus = "PENDING"
	MessageSent      MessageStatus = "SENT"
	MessageFailed    MessageStatus = "FAILED"
	MessageDelivered MessageStatus = "DELIVERED"
	MessageRead      MessageStatus = "READ"
)

type WhatsAppLog struct {
	ID            string        `json:"id"`
	Phone         string        `json:"phone"`
	Message       string        `json:"message"`
	MessageType   MessageType   `json:"messageType"`
	Status        MessageStatus `json:"status"`
	AppointmentID *string       `json:"appointmentId"`
	Error         *string       `json:"error"`
	SentAt        *time.Time    `json:"sentAt"`
	DeliveredAt   *time.Time    `json:"deliveredAt"`
	ReadAt        *time.Time    `json:"readAt"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}
