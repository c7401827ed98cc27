// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package control

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakevault/staker/reverts"
	"github.com/vechain/stakevault/store"
	"github.com/vechain/stakevault/vault"
)

var (
	slotAdmin  = vault.BytesToBytes32([]byte("admin"))
	slotPaused = vault.BytesToBytes32([]byte("paused"))
)

// Service keeps the admin identity and the global pause flag.
type Service struct {
	admin  *store.Value[vault.Address]
	paused *store.Value[bool]
}

func New(sctx *store.Context) *Service {
	return &Service{
		admin:  store.NewValue[vault.Address](sctx, slotAdmin),
		paused: store.NewValue[bool](sctx, slotPaused),
	}
}

// Initialize sets the admin identity once.
func (s *Service) Initialize(admin vault.Address) error {
	if admin.IsZero() {
		return reverts.NewValidation("admin must not be the zero address")
	}
	current, err := s.Admin()
	if err != nil {
		return err
	}
	if !current.IsZero() {
		return reverts.NewState("already initialized")
	}
	return errors.Wrap(s.admin.Set(admin), "failed to set admin")
}

// Admin returns the admin, zero before initialization.
func (s *Service) Admin() (vault.Address, error) {
	admin, err := s.admin.Get()
	if err != nil {
		return vault.Address{}, errors.Wrap(err, "failed to get admin")
	}
	return admin, nil
}

// RequireAdmin reverts unless caller is the admin.
func (s *Service) RequireAdmin(caller vault.Address) error {
	admin, err := s.Admin()
	if err != nil {
		return err
	}
	if admin.IsZero() {
		return reverts.NewState("not initialized")
	}
	if caller != admin {
		return reverts.NewAuthorization("caller is not the admin")
	}
	return nil
}

func (s *Service) IsPaused() (bool, error) {
	paused, err := s.paused.Get()
	if err != nil {
		return false, errors.Wrap(err, "failed to get paused flag")
	}
	return paused, nil
}

// RequireUnpaused reverts while paused.
func (s *Service) RequireUnpaused() error {
	paused, err := s.IsPaused()
	if err != nil {
		return err
	}
	if paused {
		return reverts.NewState("paused")
	}
	return nil
}

// RequirePaused reverts unless paused.
func (s *Service) RequirePaused() error {
	paused, err := s.IsPaused()
	if err != nil {
		return err
	}
	if !paused {
		return reverts.NewState("not paused")
	}
	return nil
}

// SetPaused toggles the pause flag. Setting the current value again is a state revert.
func (s *Service) SetPaused(paused bool) error {
	current, err := s.IsPaused()
	if err != nil {
		return err
	}
	if current == paused {
		if paused {
			return reverts.NewState("already paused")
		}
		return reverts.NewState("not paused")
	}
	return errors.Wrap(s.paused.Set(paused), "failed to set paused flag")
}
