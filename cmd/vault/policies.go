// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakevault/ledger"
	"github.com/vechain/stakevault/node"
	"github.com/vechain/stakevault/staker"
	"github.com/vechain/stakevault/vault"
)

// lockPolicy is one entry of the policies file. Durations are in seconds, rates in percent.
//
//	policies:
//	  - duration: 600
//	    dailyRate: 10
//	    penaltyRate: 10
type lockPolicy struct {
	Duration    uint64 `yaml:"duration"`
	DailyRate   uint64 `yaml:"dailyRate"`
	PenaltyRate uint64 `yaml:"penaltyRate"`
}

type policyFile struct {
	Policies []lockPolicy `yaml:"policies"`
}

func parsePolicies(r io.Reader) ([]lockPolicy, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var file policyFile
	if err := decoder.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	seen := make(map[uint64]bool)
	for i, p := range file.Policies {
		if p.Duration == 0 {
			return nil, errors.Errorf("policies[%d]: duration must be greater than zero", i)
		}
		if seen[p.Duration] {
			return nil, errors.Errorf("policies[%d]: duplicated duration %d", i, p.Duration)
		}
		seen[p.Duration] = true
	}
	return file.Policies, nil
}

func loadPolicies(path string) ([]lockPolicy, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	policies, err := parsePolicies(file)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return policies, nil
}

// applyPolicies sets the policies that differ from the stored ones and returns how many were set.
func applyPolicies(n *node.Node, admin vault.Address, policies []lockPolicy) (int, error) {
	var changed []lockPolicy
	err := n.Read(func(s *staker.Staker, _ *ledger.Ledger, _ uint64) error {
		for _, p := range policies {
			current, err := s.LockPolicy(p.Duration)
			if err != nil {
				return err
			}
			if current.DailyRate != p.DailyRate || current.PenaltyRate != p.PenaltyRate {
				changed = append(changed, p)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, p := range changed {
		if err := n.SetLockParameters(admin, p.Duration, p.DailyRate, p.PenaltyRate); err != nil {
			return 0, errors.WithMessagef(err, "set lock policy %d", p.Duration)
		}
	}
	return len(changed), nil
}
