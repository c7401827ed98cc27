// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakevault/api/utils"
	"github.com/vechain/stakevault/ledger"
	"github.com/vechain/stakevault/node"
	"github.com/vechain/stakevault/staker"
	"github.com/vechain/stakevault/vault"
)

type Vault struct {
	node     *node.Node
	soloMode bool
}

func New(node *node.Node, soloMode bool) *Vault {
	return &Vault{
		node,
		soloMode,
	}
}

func (v *Vault) handleGetVault(w http.ResponseWriter, _ *http.Request) error {
	var summary *Summary
	err := v.node.Read(func(s *staker.Staker, _ *ledger.Ledger, now uint64) error {
		admin, err := s.Admin()
		if err != nil {
			return err
		}
		paused, err := s.IsPaused()
		if err != nil {
			return err
		}
		pool, err := s.RewardPool()
		if err != nil {
			return err
		}
		balance, err := s.VaultBalance()
		if err != nil {
			return err
		}
		principal, err := s.TotalPrincipal()
		if err != nil {
			return err
		}
		totals, err := s.PoolTotals()
		if err != nil {
			return err
		}
		summary = &Summary{
			Address:        s.Address(),
			Admin:          admin,
			Paused:         paused,
			RewardPool:     hexOrDecimal(pool),
			VaultBalance:   hexOrDecimal(balance),
			TotalPrincipal: hexOrDecimal(principal),
			TotalFunded:    hexOrDecimal(totals.TotalFunded),
			TotalPenalties: hexOrDecimal(totals.TotalPenalties),
			TotalPaid:      hexOrDecimal(totals.TotalPaid),
			TotalWithdrawn: hexOrDecimal(totals.TotalWithdrawn),
			GracePeriod:    s.Calculator().Grace(),
			MaxRewardTime:  s.Calculator().MaxRewardTime(),
			Now:            now,
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, summary)
}

func (v *Vault) handleGetPolicies(w http.ResponseWriter, _ *http.Request) error {
	policies := []*Policy{}
	err := v.node.Read(func(s *staker.Staker, _ *ledger.Ledger, _ uint64) error {
		durations, err := s.LockDurations()
		if err != nil {
			return err
		}
		for _, d := range durations {
			p, err := s.LockPolicy(d)
			if err != nil {
				return err
			}
			policies = append(policies, convertPolicy(d, p))
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, policies)
}

func (v *Vault) handleGetPolicy(w http.ResponseWriter, req *http.Request) error {
	duration, err := strconv.ParseUint(mux.Vars(req)["duration"], 10, 64)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "duration"))
	}
	var policy *Policy
	err = v.node.Read(func(s *staker.Staker, _ *ledger.Ledger, _ uint64) error {
		p, err := s.LockPolicy(duration)
		if err != nil {
			return err
		}
		policy = convertPolicy(duration, p)
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, policy)
}

func (v *Vault) handleGetStakes(w http.ResponseWriter, req *http.Request) error {
	account, err := vault.ParseAddress(mux.Vars(req)["account"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "account"))
	}
	result := &Stakes{Account: account, Stakes: []*Stake{}}
	err = v.node.Read(func(s *staker.Staker, _ *ledger.Ledger, _ uint64) error {
		count, err := s.StakeCount(account)
		if err != nil {
			return err
		}
		result.Count = count
		for i := range count {
			stake, err := s.GetStake(account, i)
			if err != nil {
				return err
			}
			result.Stakes = append(result.Stakes, convertStake(i, stake, s.Calculator()))
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, result)
}

func (v *Vault) handleGetStake(w http.ResponseWriter, req *http.Request) error {
	account, err := vault.ParseAddress(mux.Vars(req)["account"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "account"))
	}
	index, err := strconv.ParseUint(mux.Vars(req)["index"], 10, 64)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "index"))
	}
	var detail *StakeDetail
	err = v.node.Read(func(s *staker.Staker, _ *ledger.Ledger, now uint64) error {
		count, err := s.StakeCount(account)
		if err != nil {
			return err
		}
		if index >= count {
			return utils.NotFound(fmt.Errorf("stake %d not found", index))
		}
		stake, err := s.GetStake(account, index)
		if err != nil {
			return err
		}
		claimable, err := s.ClaimableReward(account, index, now)
		if err != nil {
			return err
		}
		maxReward, err := s.MaxReward(account, index)
		if err != nil {
			return err
		}
		detail = &StakeDetail{
			Stake:     convertStake(index, stake, s.Calculator()),
			Claimable: hexOrDecimal(claimable),
			MaxReward: hexOrDecimal(maxReward),
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, detail)
}

func requireIndex(req *OpRequest) (uint64, error) {
	if req.Index == nil {
		return 0, utils.BadRequest(errors.New("body: index required"))
	}
	return *req.Index, nil
}

func requireAmount(req *OpRequest) (*big.Int, error) {
	if req.Amount == nil {
		return nil, utils.BadRequest(errors.New("body: amount required"))
	}
	return (*big.Int)(req.Amount), nil
}

func requireUint(name string, v *uint64) (uint64, error) {
	if v == nil {
		return 0, utils.BadRequest(fmt.Errorf("body: %s required", name))
	}
	return *v, nil
}

// dispatch runs the named operation. Unknown operations return a nil result and a not found error.
func (v *Vault) dispatch(op string, req *OpRequest) (*OpResult, error) {
	var result OpResult
	switch op {
	case "stake":
		amount, err := requireAmount(req)
		if err != nil {
			return nil, err
		}
		duration, err := requireUint("duration", req.Duration)
		if err != nil {
			return nil, err
		}
		index, err := v.node.Stake(req.Caller, amount, duration)
		if err != nil {
			return nil, err
		}
		result.Index = &index
	case "claim":
		index, err := requireIndex(req)
		if err != nil {
			return nil, err
		}
		reward, err := v.node.ClaimReward(req.Caller, index)
		if err != nil {
			return nil, err
		}
		result.Amount = hexOrDecimal(reward)
	case "unstake":
		index, err := requireIndex(req)
		if err != nil {
			return nil, err
		}
		payout, err := v.node.Unstake(req.Caller, index)
		if err != nil {
			return nil, err
		}
		result.Amount = hexOrDecimal(payout)
	case "cleanup":
		index, err := requireIndex(req)
		if err != nil {
			return nil, err
		}
		if req.Account == nil {
			return nil, utils.BadRequest(errors.New("body: account required"))
		}
		if err := v.node.CleanUpExpiredStake(req.Caller, *req.Account, index); err != nil {
			return nil, err
		}
	case "emergency-withdraw":
		index, err := requireIndex(req)
		if err != nil {
			return nil, err
		}
		principal, err := v.node.EmergencyWithdraw(req.Caller, index)
		if err != nil {
			return nil, err
		}
		result.Amount = hexOrDecimal(principal)
	case "fund":
		amount, err := requireAmount(req)
		if err != nil {
			return nil, err
		}
		if err := v.node.Fund(req.Caller, amount); err != nil {
			return nil, err
		}
	case "withdraw-excess":
		excess, err := v.node.WithdrawExcess(req.Caller)
		if err != nil {
			return nil, err
		}
		result.Amount = hexOrDecimal(excess)
	case "lock-parameters":
		duration, err := requireUint("duration", req.Duration)
		if err != nil {
			return nil, err
		}
		daily, err := requireUint("dailyRate", req.DailyRate)
		if err != nil {
			return nil, err
		}
		penalty, err := requireUint("penaltyRate", req.PenaltyRate)
		if err != nil {
			return nil, err
		}
		if err := v.node.SetLockParameters(req.Caller, duration, daily, penalty); err != nil {
			return nil, err
		}
	case "pause":
		if err := v.node.Pause(req.Caller); err != nil {
			return nil, err
		}
	case "unpause":
		if err := v.node.Unpause(req.Caller); err != nil {
			return nil, err
		}
	default:
		return nil, utils.NotFound(fmt.Errorf("unknown operation %q", op))
	}
	return &result, nil
}

func (v *Vault) handleOperation(w http.ResponseWriter, req *http.Request) error {
	var body OpRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	result, err := v.dispatch(mux.Vars(req)["op"], &body)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, result)
}

func (v *Vault) handleMint(w http.ResponseWriter, req *http.Request) error {
	var body MintRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return utils.BadRequest(errors.New("body: amount required"))
	}
	if err := v.node.Mint(body.To, (*big.Int)(body.Amount)); err != nil {
		return err
	}
	var balance *big.Int
	err := v.node.Read(func(_ *staker.Staker, l *ledger.Ledger, _ uint64) (err error) {
		balance, err = l.BalanceOf(body.To)
		return
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"balance": hexOrDecimal(balance)})
}

func (v *Vault) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	account, err := vault.ParseAddress(mux.Vars(req)["account"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "account"))
	}
	var balance *big.Int
	err = v.node.Read(func(_ *staker.Staker, l *ledger.Ledger, _ uint64) (err error) {
		balance, err = l.BalanceOf(account)
		return
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"balance": hexOrDecimal(balance)})
}

// Mount registers the vault routes under pathPrefix and the ledger routes under ledgerPrefix.
func (v *Vault) Mount(root *mux.Router, pathPrefix, ledgerPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /vault").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetVault))
	sub.Path("/policies").
		Methods(http.MethodGet).
		Name("GET /vault/policies").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetPolicies))
	sub.Path("/policies/{duration}").
		Methods(http.MethodGet).
		Name("GET /vault/policies/{duration}").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetPolicy))
	sub.Path("/stakes/{account}").
		Methods(http.MethodGet).
		Name("GET /vault/stakes/{account}").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetStakes))
	sub.Path("/stakes/{account}/{index}").
		Methods(http.MethodGet).
		Name("GET /vault/stakes/{account}/{index}").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetStake))
	// operations trust the caller named in the body, solo mode only
	if v.soloMode {
		sub.Path("/{op}").
			Methods(http.MethodPost).
			Name("POST /vault/{op}").
			HandlerFunc(utils.WrapHandlerFunc(v.handleOperation))
	}

	lsub := root.PathPrefix(ledgerPrefix).Subrouter()
	lsub.Path("/balances/{account}").
		Methods(http.MethodGet).
		Name("GET /ledger/balances/{account}").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetBalance))
	if v.soloMode {
		lsub.Path("/mint").
			Methods(http.MethodPost).
			Name("POST /ledger/mint").
			HandlerFunc(utils.WrapHandlerFunc(v.handleMint))
	}
}
