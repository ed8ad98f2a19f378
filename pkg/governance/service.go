package governance

import (
	"fmt"
	"time"
)

// ActivationStatus represents the lifecycle state of a service activation.
type ActivationStatus string

const (
	ActivationPending   ActivationStatus = "pending"
	ActivationRunning   ActivationStatus = "running"
	ActivationCompleted ActivationStatus = "completed"
	ActivationFailed    ActivationStatus = "failed"
	ActivationCancelled ActivationStatus = "cancelled"
)

// PaymentDetails carries the payment sub-schema of a payment-kind service.
type PaymentDetails struct {
	PayerID     string            `json:"payer_id"`
	PayeeID     string            `json:"payee_id"`
	AmountCents int64             `json:"amount_cents"`
	Currency    string            `json:"currency"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// ServiceActivation records that a named external capability was bound to a
// forum or policy. Start and completion timestamps are set only on the
// corresponding status transition.
type ServiceActivation struct {
	ID          string `json:"id"`
	ServiceName string `json:"service_name"`

	// Originating context
	PolicyID string `json:"policy_id"`
	RuleID   string `json:"rule_id"`
	ForumID  string `json:"forum_id,omitempty"`

	Config  map[string]string `json:"config,omitempty"`
	Payment *PaymentDetails   `json:"payment,omitempty"`

	Status      ActivationStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// Start transitions the activation from pending to running.
func (a *ServiceActivation) Start(now time.Time) error {
	if a.Status != ActivationPending {
		return fmt.Errorf("activation %q cannot start from status %q", a.ID, a.Status)
	}
	a.Status = ActivationRunning
	a.StartedAt = &now
	return nil
}

// Complete transitions the activation from running to completed.
func (a *ServiceActivation) Complete(now time.Time) error {
	if a.Status != ActivationRunning {
		return fmt.Errorf("activation %q cannot complete from status %q", a.ID, a.Status)
	}
	a.Status = ActivationCompleted
	a.CompletedAt = &now
	return nil
}

// Fail transitions a pending or running activation to failed.
func (a *ServiceActivation) Fail(now time.Time) error {
	if a.Status != ActivationPending && a.Status != ActivationRunning {
		return fmt.Errorf("activation %q cannot fail from status %q", a.ID, a.Status)
	}
	a.Status = ActivationFailed
	a.CompletedAt = &now
	return nil
}

// Cancel transitions a pending or running activation to cancelled.
func (a *ServiceActivation) Cancel(now time.Time) error {
	if a.Status != ActivationPending && a.Status != ActivationRunning {
		return fmt.Errorf("activation %q cannot cancel from status %q", a.ID, a.Status)
	}
	a.Status = ActivationCancelled
	a.CompletedAt = &now
	return nil
}
