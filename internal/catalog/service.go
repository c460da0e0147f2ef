// Package catalog serves the read-only game rule table.
package catalog

import (
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/ledger"
)

// Service lists the games a player can start.
type Service struct{}

func NewService() *Service { return &Service{} }

// List returns every rule in display order.
func (s *Service) List() []ledger.GameRule {
	return ledger.Rules()
}

// Get returns the rule of one game kind.
func (s *Service) Get(kind string) (ledger.GameRule, error) {
	r, ok := ledger.RuleFor(ledger.Kind(kind))
	if !ok {
		return ledger.GameRule{}, apperr.NotFound("game not found")
	}
	return r, nil
}
