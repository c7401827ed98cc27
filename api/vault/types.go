// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakevault/staker/policy"
	"github.com/vechain/stakevault/staker/reward"
	"github.com/vechain/stakevault/staker/stakes"
	"github.com/vechain/stakevault/vault"
)

type Summary struct {
	Address        vault.Address         `json:"address"`
	Admin          vault.Address         `json:"admin"`
	Paused         bool                  `json:"paused"`
	RewardPool     *math.HexOrDecimal256 `json:"rewardPool"`
	VaultBalance   *math.HexOrDecimal256 `json:"vaultBalance"`
	TotalPrincipal *math.HexOrDecimal256 `json:"totalPrincipal"`
	TotalFunded    *math.HexOrDecimal256 `json:"totalFunded"`
	TotalPenalties *math.HexOrDecimal256 `json:"totalPenalties"`
	TotalPaid      *math.HexOrDecimal256 `json:"totalPaid"`
	TotalWithdrawn *math.HexOrDecimal256 `json:"totalWithdrawn"`
	GracePeriod    uint64                `json:"gracePeriod"`
	MaxRewardTime  uint64                `json:"maxRewardTime"`
	Now            uint64                `json:"now"`
}

type Policy struct {
	LockDuration uint64 `json:"lockDuration"`
	DailyRate    uint64 `json:"dailyRate"`
	PenaltyRate  uint64 `json:"penaltyRate"`
	Offered      bool   `json:"offered"`
}

func convertPolicy(duration uint64, p *policy.Policy) *Policy {
	return &Policy{
		LockDuration: duration,
		DailyRate:    p.DailyRate,
		PenaltyRate:  p.PenaltyRate,
		Offered:      p.Offered(),
	}
}

type Stake struct {
	Index        uint64                `json:"index"`
	Principal    *math.HexOrDecimal256 `json:"principal"`
	Start        uint64                `json:"start"`
	LockDuration uint64                `json:"lockDuration"`
	FixedRate    uint64                `json:"fixedRate"`
	Claimed      *math.HexOrDecimal256 `json:"claimed"`
	Active       bool                  `json:"active"`
	Expired      bool                  `json:"expired"`
	UnlockTime   uint64                `json:"unlockTime"`
	Deadline     uint64                `json:"deadline"`
}

func convertStake(index uint64, s *stakes.Stake, calc *reward.Calculator) *Stake {
	return &Stake{
		Index:        index,
		Principal:    hexOrDecimal(s.Principal),
		Start:        s.Start,
		LockDuration: s.LockDuration,
		FixedRate:    s.FixedRate,
		Claimed:      hexOrDecimal(s.Claimed),
		Active:       s.Active,
		Expired:      s.Expired,
		UnlockTime:   calc.UnlockTime(s),
		Deadline:     calc.Deadline(s),
	}
}

// StakeDetail is a stake with its reward projections at the time of the request.
type StakeDetail struct {
	*Stake
	Claimable *math.HexOrDecimal256 `json:"claimable"`
	MaxReward *math.HexOrDecimal256 `json:"maxReward"`
}

type Stakes struct {
	Account vault.Address `json:"account"`
	Count   uint64        `json:"count"`
	Stakes  []*Stake      `json:"stakes"`
}

// OpRequest is the body of a vault operation. Fields not used by the operation must be omitted.
type OpRequest struct {
	Caller      vault.Address         `json:"caller"`
	Account     *vault.Address        `json:"account,omitempty"`
	Amount      *math.HexOrDecimal256 `json:"amount,omitempty"`
	Index       *uint64               `json:"index,omitempty"`
	Duration    *uint64               `json:"duration,omitempty"`
	DailyRate   *uint64               `json:"dailyRate,omitempty"`
	PenaltyRate *uint64               `json:"penaltyRate,omitempty"`
}

type OpResult struct {
	Index  *uint64               `json:"index,omitempty"`
	Amount *math.HexOrDecimal256 `json:"amount,omitempty"`
}

type MintRequest struct {
	To     vault.Address         `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

func hexOrDecimal(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}
