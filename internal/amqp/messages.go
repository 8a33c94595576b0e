package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"financas/internal/core"
	"financas/internal/document"
)

// ExportRequestedMessage asks a worker to build one report. It carries the
// raw selection; the worker derives the criteria itself.
type ExportRequestedMessage struct {
	JobID       string           `json:"job_id"`
	UserID      string           `json:"user_id"`
	UserLabel   string           `json:"user_label,omitempty"`
	Period      string           `json:"period"`
	StartDate   string           `json:"start_date,omitempty"`
	EndDate     string           `json:"end_date,omitempty"`
	Kind        string           `json:"kind,omitempty"`
	CategoryID  string           `json:"category_id,omitempty"`
	Options     document.Options `json:"options"`
	RequestedAt time.Time        `json:"requested_at"`
}

// NewExportRequestedMessage assigns a fresh job ID.
func NewExportRequestedMessage(userID string, opts document.Options) *ExportRequestedMessage {
	return &ExportRequestedMessage{
		JobID:       uuid.NewString(),
		UserID:      userID,
		Options:     opts,
		RequestedAt: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExportRequestedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Validate rejects messages no worker could act on.
func (m *ExportRequestedMessage) Validate() error {
	if _, err := uuid.Parse(m.JobID); err != nil {
		return fmt.Errorf("invalid job id %q: %w", m.JobID, err)
	}
	if m.UserID == "" {
		return errors.New("missing user id")
	}
	if !core.ValidUserID(m.UserID) {
		return fmt.Errorf("invalid user id %q", m.UserID)
	}
	return nil
}

// ExportRequestedMessageFromJSON decodes and validates a message.
func ExportRequestedMessageFromJSON(data []byte) (*ExportRequestedMessage, error) {
	var msg ExportRequestedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}

// retryableError marks handler failures worth redelivering.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Retryable marks err so the consumer requeues the delivery instead of
// dropping it.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

// IsRetryable reports whether err was marked with Retryable.
func IsRetryable(err error) bool {
	var r *retryableError
	return errors.As(err, &r)
}
