package model

import (
	"encoding/json"
	"fmt"
)

// ReminderPayload is the opaque data bundle attached to a scheduled
// reminder. It is written when the reminder is scheduled and read back
// only when the delivered notification is actioned, so it must
// round-trip through JSON without loss.
type ReminderPayload struct {
	// TaskID identifies the task the reminder is about.
	TaskID string `json:"taskId"`

	// UserID identifies the owner the reminder was scheduled for.
	// Re-validated against the current session on every dispatch.
	UserID string `json:"userId"`

	// Title is the task title, shown as the notification body.
	Title string `json:"title"`

	// DueDate is the task's due date as YYYY-MM-DD.
	DueDate string `json:"dueDate"`
}

// Encode serializes the payload for storage in a notification's data
// field.
func (p ReminderPayload) Encode() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encoding reminder payload: %w", err)
	}
	return string(data), nil
}

// DecodeReminderPayload parses a payload previously produced by Encode.
func DecodeReminderPayload(data string) (ReminderPayload, error) {
	var p ReminderPayload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return ReminderPayload{}, fmt.Errorf("decoding reminder payload: %w", err)
	}
	return p, nil
}
