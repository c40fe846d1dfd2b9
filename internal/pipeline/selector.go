package pipeline

import (
	"github.com/ternarybob/evalbot/internal/common"
	"github.com/ternarybob/evalbot/internal/interfaces"
	"github.com/ternarybob/evalbot/internal/models"
	"github.com/ternarybob/evalbot/internal/strategy/generic"
	"github.com/ternarybob/evalbot/internal/strategy/nixpkgs"
)

// Selector resolves a job's repository to its strategy (§4.2 "Strategy
// selection"): the configured nixpkgs repository gets the Nixpkgs
// strategy, everything else falls back to the generic strategy.
type Selector struct {
	nixpkgsCfg common.NixpkgsConfig
}

var _ interfaces.StrategySelector = (*Selector)(nil)

// NewSelector builds a Selector from the Nixpkgs strategy's configuration.
func NewSelector(nixpkgsCfg common.NixpkgsConfig) *Selector {
	return &Selector{nixpkgsCfg: nixpkgsCfg}
}

func (s *Selector) Select(repo models.RepoDescriptor) interfaces.Strategy {
	if repo.FullName == s.nixpkgsCfg.RepoFullName {
		return nixpkgs.New(s.nixpkgsCfg)
	}
	return &generic.Strategy{}
}
