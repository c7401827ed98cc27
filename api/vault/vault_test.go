// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakevault/kv"
	"github.com/vechain/stakevault/node"
	"github.com/vechain/stakevault/state"
	"github.com/vechain/stakevault/vault"
)

var (
	vaultAddr = vault.BytesToAddress([]byte("vault"))
	admin     = vault.BytesToAddress([]byte("admin"))
	alice     = vault.BytesToAddress([]byte("alice"))
)

type testClock struct{ now uint64 }

func (c *testClock) Now() uint64 { return c.now }

type testServer struct {
	t     *testing.T
	ts    *httptest.Server
	clock *testClock
}

func newTestServer(t *testing.T, soloMode bool) *testServer {
	db, err := kv.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := &testClock{now: 1000}
	n := node.New(state.New(db, 0), clock, node.Options{VaultAddress: vaultAddr})
	require.NoError(t, n.Initialize(admin))
	require.NoError(t, n.Mint(admin, big.NewInt(10_000)))
	require.NoError(t, n.Mint(alice, big.NewInt(1_000)))

	router := mux.NewRouter()
	New(n, soloMode).Mount(router, "/vault", "/ledger")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return &testServer{t: t, ts: ts, clock: clock}
}

func (s *testServer) do(method, path string, body any) (int, []byte) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, s.ts.URL+path, reader)
	require.NoError(s.t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(s.t, err)
	return res.StatusCode, data
}

func (s *testServer) op(op string, body any) (*OpResult, int) {
	status, data := s.do(http.MethodPost, "/vault/"+op, body)
	if status != http.StatusOK {
		return nil, status
	}
	var result OpResult
	require.NoError(s.t, json.Unmarshal(data, &result))
	return &result, status
}

func amount(v int64) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(big.NewInt(v))
}

func u64(v uint64) *uint64 { return &v }

func TestVaultLifecycle(t *testing.T) {
	s := newTestServer(t, true)

	_, status := s.op("lock-parameters", &OpRequest{Caller: admin, Duration: u64(600), DailyRate: u64(10), PenaltyRate: u64(10)})
	assert.Equal(t, http.StatusOK, status)
	_, status = s.op("fund", &OpRequest{Caller: admin, Amount: amount(1000)})
	assert.Equal(t, http.StatusOK, status)

	res, status := s.op("stake", &OpRequest{Caller: alice, Amount: amount(100), Duration: u64(600)})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, uint64(0), *res.Index)

	s.clock.now += 43200
	res, status = s.op("claim", &OpRequest{Caller: alice, Index: u64(0)})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, (*big.Int)(res.Amount).Cmp(big.NewInt(5)))

	status, data := s.do(http.MethodGet, "/vault/stakes/"+alice.String()+"/0", nil)
	require.Equal(t, http.StatusOK, status)
	var detail StakeDetail
	require.NoError(t, json.Unmarshal(data, &detail))
	assert.Equal(t, uint64(1000), detail.Start)
	assert.Equal(t, uint64(1600), detail.UnlockTime)
	assert.Equal(t, 0, (*big.Int)(detail.Claimed).Cmp(big.NewInt(5)))
	assert.Equal(t, 0, (*big.Int)(detail.Claimable).Sign())
	assert.Equal(t, 0, (*big.Int)(detail.MaxReward).Cmp(big.NewInt(10)))

	s.clock.now += 43200
	res, status = s.op("unstake", &OpRequest{Caller: alice, Index: u64(0)})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, (*big.Int)(res.Amount).Cmp(big.NewInt(105)))

	status, data = s.do(http.MethodGet, "/vault", nil)
	require.Equal(t, http.StatusOK, status)
	var summary Summary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, admin, summary.Admin)
	assert.Equal(t, vaultAddr, summary.Address)
	assert.False(t, summary.Paused)
	assert.Equal(t, 0, (*big.Int)(summary.RewardPool).Cmp(big.NewInt(990)))
	assert.Equal(t, 0, (*big.Int)(summary.VaultBalance).Cmp(big.NewInt(990)))
	assert.Equal(t, 0, (*big.Int)(summary.TotalPrincipal).Sign())
	assert.Equal(t, 0, (*big.Int)(summary.TotalPaid).Cmp(big.NewInt(10)))

	status, data = s.do(http.MethodGet, "/vault/stakes/"+alice.String(), nil)
	require.Equal(t, http.StatusOK, status)
	var stakes Stakes
	require.NoError(t, json.Unmarshal(data, &stakes))
	assert.Equal(t, uint64(1), stakes.Count)
	require.Len(t, stakes.Stakes, 1)
	assert.False(t, stakes.Stakes[0].Active)

	status, data = s.do(http.MethodGet, "/ledger/balances/"+alice.String(), nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"balance":"0x3f2"}`, string(data))
}

func TestPolicies(t *testing.T) {
	s := newTestServer(t, true)

	for _, d := range []uint64{600, 60} {
		_, status := s.op("lock-parameters", &OpRequest{Caller: admin, Duration: u64(d), DailyRate: u64(d / 60), PenaltyRate: u64(5)})
		require.Equal(t, http.StatusOK, status)
	}

	status, data := s.do(http.MethodGet, "/vault/policies", nil)
	require.Equal(t, http.StatusOK, status)
	var policies []*Policy
	require.NoError(t, json.Unmarshal(data, &policies))
	require.Len(t, policies, 2)
	assert.Equal(t, &Policy{LockDuration: 600, DailyRate: 10, PenaltyRate: 5, Offered: true}, policies[0])
	assert.Equal(t, uint64(60), policies[1].LockDuration)

	status, data = s.do(http.MethodGet, "/vault/policies/3600", nil)
	require.Equal(t, http.StatusOK, status)
	var policy Policy
	require.NoError(t, json.Unmarshal(data, &policy))
	assert.False(t, policy.Offered)

	status, _ = s.do(http.MethodGet, "/vault/policies/abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestErrorStatus(t *testing.T) {
	s := newTestServer(t, true)

	tests := []struct {
		name   string
		op     string
		body   any
		status int
	}{
		{"unknown op", "burn", &OpRequest{Caller: admin}, http.StatusNotFound},
		{"missing amount", "fund", &OpRequest{Caller: admin}, http.StatusBadRequest},
		{"missing index", "claim", &OpRequest{Caller: alice}, http.StatusBadRequest},
		{"missing account", "cleanup", &OpRequest{Caller: alice, Index: u64(0)}, http.StatusBadRequest},
		{"unknown field", "pause", map[string]any{"caller": admin, "foo": 1}, http.StatusBadRequest},
		{"not admin", "pause", &OpRequest{Caller: alice}, http.StatusForbidden},
		{"not offered", "stake", &OpRequest{Caller: alice, Amount: amount(1), Duration: u64(1)}, http.StatusBadRequest},
		{"not paused", "withdraw-excess", &OpRequest{Caller: admin}, http.StatusConflict},
		{"no stake", "unstake", &OpRequest{Caller: alice, Index: u64(3)}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := s.do(http.MethodPost, "/vault/"+tt.op, tt.body)
			assert.Equal(t, tt.status, status)
		})
	}

	status, _ := s.do(http.MethodGet, "/vault/stakes/"+alice.String()+"/0", nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = s.do(http.MethodGet, "/vault/stakes/nobody", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMint(t *testing.T) {
	s := newTestServer(t, false)
	status, _ := s.do(http.MethodPost, "/ledger/mint", &MintRequest{To: alice, Amount: amount(1)})
	assert.Equal(t, http.StatusNotFound, status)

	s = newTestServer(t, true)
	status, data := s.do(http.MethodPost, "/ledger/mint", &MintRequest{To: alice, Amount: amount(24)})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"balance":"0x400"}`, string(data))

	status, _ = s.do(http.MethodPost, "/ledger/mint", &MintRequest{To: alice, Amount: amount(0)})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestOperationsRequireSolo(t *testing.T) {
	s := newTestServer(t, false)

	for _, tt := range []struct {
		op   string
		body *OpRequest
	}{
		{"pause", &OpRequest{Caller: admin}},
		{"unpause", &OpRequest{Caller: admin}},
		{"lock-parameters", &OpRequest{Caller: admin, Duration: u64(600), DailyRate: u64(10), PenaltyRate: u64(10)}},
		{"fund", &OpRequest{Caller: admin, Amount: amount(1)}},
		{"stake", &OpRequest{Caller: alice, Amount: amount(1), Duration: u64(600)}},
		{"unstake", &OpRequest{Caller: alice, Index: u64(0)}},
	} {
		status, _ := s.do(http.MethodPost, "/vault/"+tt.op, tt.body)
		assert.Equal(t, http.StatusNotFound, status, tt.op)
	}

	// reads stay available
	status, data := s.do(http.MethodGet, "/vault", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(data), `"paused":false`)
}
