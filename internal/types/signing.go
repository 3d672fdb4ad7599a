package types

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the stored state of a signing request. Only two values
// are ever persisted; "expired" is derived at read time.
type RequestStatus string

const (
	StatusPending RequestStatus = "pending"
	StatusSigned  RequestStatus = "signed"

	// StatusExpired is a display status only, never written to storage.
	StatusExpired RequestStatus = "expired"
)

// Document is one file attached to a signing request. It is owned by its
// parent request and has no independent lifecycle. URL is an opaque
// reference to externally stored bytes.
type Document struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// SigningRequest is one unit of work awaiting an employee's signature.
// EmployeeName and EmployeeEmail are a snapshot of the recipient as of
// creation time, intentionally denormalized so historical requests keep
// displaying the identity they were addressed to.
type SigningRequest struct {
	ID            uuid.UUID     `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Status        RequestStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	EmployeeID    uuid.UUID     `json:"employeeId"`
	EmployeeName  string        `json:"employeeName"`
	EmployeeEmail string        `json:"employeeEmail"`
	CreatedBy     uuid.UUID     `json:"createdBy"`
	Documents     []Document    `json:"documents"`
	SignedAt      *time.Time    `json:"signedAt,omitempty"`
	ExpiresAt     time.Time     `json:"expiresAt"`
}

// EffectiveStatus derives the display status: a pending request past its
// deadline reads as expired, but the stored status stays pending and the
// data layer still permits signing it.
func (r *SigningRequest) EffectiveStatus(now time.Time) RequestStatus {
	if r.Status == StatusPending && now.After(r.ExpiresAt) {
		return StatusExpired
	}
	return r.Status
}

// Expired reports whether the signing deadline has passed.
func (r *SigningRequest) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// ExpiringSoon reports whether the deadline is within the given number of
// days, used to highlight requests that need attention.
func (r *SigningRequest) ExpiringSoon(now time.Time, days int) bool {
	if r.Status != StatusPending {
		return false
	}
	until := r.ExpiresAt.Sub(now)
	return until > 0 && until <= time.Duration(days)*24*time.Hour
}

// CreateRequestParams carries everything HR supplies when creating a
// signature request. The server assigns the id, sets status to pending and
// denormalizes the employee snapshot from the resolved employee record.
type CreateRequestParams struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	EmployeeID  uuid.UUID    `json:"employeeId"`
	ExpiresAt   time.Time    `json:"expiresAt,omitempty"`
	Documents   []FileUpload `json:"documents"`
}
