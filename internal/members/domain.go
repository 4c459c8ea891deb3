// internal/members/domain.go
package members

import (
	"errors"
	"fmt"

	"toolshed/internal/storage"
)

var (
	ErrDuplicateID = errors.New("member id already in use")
	ErrNotFound    = errors.New("member not found")
	ErrInvalidRole = errors.New("invalid member role")
	ErrRateLimited = errors.New("registration rate limit exceeded")
)

// Role distinguishes residents from administrators.
type Role string

const (
	RoleResident      Role = "resident"
	RoleAdministrator Role = "administrator"
)

// ParseRole validates a stored role value.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleResident, RoleAdministrator:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// Member is a registered community member.
type Member struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Role      Role   `json:"role"`
}

// FullName returns the display name used by listings and reports.
func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// IsAdmin reports whether the member holds the administrator role.
func (m *Member) IsAdmin() bool {
	return m.Role == RoleAdministrator
}

// Fields is the persisted record shape, in on-disk order.
var Fields = []string{"id", "first_name", "last_name", "phone", "address", "role"}

func (m *Member) toRecord() storage.Record {
	return storage.Record{
		"id":         m.ID,
		"first_name": m.FirstName,
		"last_name":  m.LastName,
		"phone":      m.Phone,
		"address":    m.Address,
		"role":       string(m.Role),
	}
}

func fromRecord(rec storage.Record) (*Member, error) {
	role, err := ParseRole(rec["role"])
	if err != nil {
		return nil, err
	}
	return &Member{
		ID:        rec["id"],
		FirstName: rec["first_name"],
		LastName:  rec["last_name"],
		Phone:     rec["phone"],
		Address:   rec["address"],
		Role:      role,
	}, nil
}
