// Package identity supplies the reviewer identity attached to audit
// entries. The static provider stands in for a real identity service.
package identity

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/review-cli/internal/model"
)

// Provider resolves the current reviewer.
type Provider interface {
	Current() (model.User, error)
}

// Static returns a fixed identity, typically from config or flags.
type Static struct {
	User model.User
}

// Current returns the configured identity. An identity without both name
// and email cannot author audit entries and is rejected.
func (s Static) Current() (model.User, error) {
	if s.User.Name == "" || s.User.Email == "" {
		return model.User{}, eris.New("identity: name and email are required")
	}
	return s.User, nil
}

// Default is the development identity used when nothing is configured.
func Default() Static {
	return Static{User: model.User{
		Name:  "Test User",
		Email: "test@example.com",
		Role:  "reviewer",
	}}
}
