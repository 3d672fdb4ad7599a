package types

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// Role distinguishes the two kinds of portal identities.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleHR       Role = "hr"
)

func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleHR
}

// User is a portal identity. Role is immutable after creation and hr
// identities can never be deleted.
type User struct {
	ID                     uuid.UUID `json:"id"`
	Email                  string    `json:"email"`
	Role                   Role      `json:"role"`
	Name                   string    `json:"name"`
	Phone                  *string   `json:"phone,omitempty"`
	Address                *string   `json:"address,omitempty"`
	IDProofURL             *string   `json:"idProofUrl,omitempty"`
	HasCompletedFirstLogin bool      `json:"hasCompletedFirstLogin"`
	PasswordHash           string    `json:"-"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

// CreateUserParams carries the fields HR supplies when provisioning an
// account. The server assigns id and timestamps.
type CreateUserParams struct {
	Email    string  `json:"email"`
	Role     Role    `json:"role"`
	Name     string  `json:"name"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	Password string  `json:"password,omitempty"`
}

// UpdateUserParams uses pointers so partial updates can distinguish "unset"
// from "set to empty". Unspecified fields retain their prior values.
type UpdateUserParams struct {
	Email                  *string `json:"email,omitempty"`
	Name                   *string `json:"name,omitempty"`
	Phone                  *string `json:"phone,omitempty"`
	Address                *string `json:"address,omitempty"`
	HasCompletedFirstLogin *bool   `json:"hasCompletedFirstLogin,omitempty"`
}

// Apply returns a copy of the user with the params' set fields merged in.
// Unset fields keep their prior values.
func (u User) Apply(params UpdateUserParams) User {
	if params.Email != nil {
		u.Email = *params.Email
	}
	if params.Name != nil {
		u.Name = *params.Name
	}
	if params.Phone != nil {
		u.Phone = params.Phone
	}
	if params.Address != nil {
		u.Address = params.Address
	}
	if params.HasCompletedFirstLogin != nil {
		u.HasCompletedFirstLogin = *params.HasCompletedFirstLogin
	}
	return u
}

// FirstLoginData is the mandatory onboarding submission for first-time
// employees. All four fields are required; Validate runs before any
// repository call is made.
type FirstLoginData struct {
	Name    string      `json:"name"`
	Phone   string      `json:"phone"`
	Address string      `json:"address"`
	IDProof *FileUpload `json:"idProof"`
}

// FileUpload describes one uploaded file. Reader may be nil when only the
// metadata matters (mock mode); storage itself is an external concern and
// the resulting URL stays an opaque reference.
type FileUpload struct {
	Name        string    `json:"name"`
	ContentType string    `json:"type"`
	Size        int64     `json:"size"`
	Reader      io.Reader `json:"-"`
}
