// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package policy

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakevault/staker/reverts"
	"github.com/vechain/stakevault/store"
	"github.com/vechain/stakevault/vault"
)

var (
	slotPolicies  = vault.BytesToBytes32([]byte("lock-policies"))
	slotDurations = vault.BytesToBytes32([]byte("lock-durations"))
	slotListed    = vault.BytesToBytes32([]byte("lock-listed"))
)

// Policy is the reward and penalty configuration of a lock duration.
// A zero DailyRate means the duration is not offered.
type Policy struct {
	DailyRate   uint64
	PenaltyRate uint64
}

// Offered reports whether new stakes may use the policy.
func (p *Policy) Offered() bool {
	return p.DailyRate > 0
}

// Service is the lock policy registry.
type Service struct {
	policies  *store.Mapping[store.Uint64Key, *Policy]
	durations *store.Array[uint64]
	listed    *store.Mapping[store.Uint64Key, bool]
}

func New(sctx *store.Context) *Service {
	return &Service{
		policies:  store.NewMapping[store.Uint64Key, *Policy](sctx, slotPolicies),
		durations: store.NewArray[uint64](sctx, slotDurations),
		listed:    store.NewMapping[store.Uint64Key, bool](sctx, slotListed),
	}
}

// Get returns the policy of duration. An unknown duration yields a zero policy.
func (s *Service) Get(duration uint64) (*Policy, error) {
	p, err := s.policies.Get(store.Uint64Key(duration))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get lock policy")
	}
	return p, nil
}

// Set overwrites the policy of duration. Rate magnitudes are not bounded.
func (s *Service) Set(duration, dailyRate, penaltyRate uint64) error {
	if duration == 0 {
		return reverts.NewValidation("lock duration must be greater than zero")
	}
	if err := s.policies.Set(store.Uint64Key(duration), &Policy{DailyRate: dailyRate, PenaltyRate: penaltyRate}); err != nil {
		return errors.Wrap(err, "failed to set lock policy")
	}

	listed, err := s.listed.Get(store.Uint64Key(duration))
	if err != nil {
		return errors.Wrap(err, "failed to get lock policy")
	}
	if listed {
		return nil
	}
	if _, err := s.durations.Push(duration); err != nil {
		return errors.Wrap(err, "failed to list lock duration")
	}
	return errors.Wrap(s.listed.Set(store.Uint64Key(duration), true), "failed to list lock duration")
}

// Durations returns every duration ever configured, in configuration order.
func (s *Service) Durations() ([]uint64, error) {
	n, err := s.durations.Len()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list lock durations")
	}
	durations := make([]uint64, 0, n)
	for i := range n {
		d, _, err := s.durations.Get(i)
		if err != nil {
			return nil, errors.Wrap(err, "failed to list lock durations")
		}
		durations = append(durations, d)
	}
	return durations, nil
}
