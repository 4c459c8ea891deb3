// internal/members/service.go
package members

import "context"

// Update carries a partial edit; nil fields are left untouched.
type Update struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
	Role      *Role   `json:"role,omitempty"`
}

// Service defines the interface for the member registry.
type Service interface {
	Register(ctx context.Context, m Member) error
	Get(ctx context.Context, id string) (*Member, error)
	List(ctx context.Context) []Member
	Edit(ctx context.Context, id string, upd Update) error
	Remove(ctx context.Context, id string) error
	Persist(ctx context.Context) map[string]bool
}
