// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakevault/event"
	"github.com/vechain/stakevault/eventdb"
	"github.com/vechain/stakevault/vault"
)

var (
	alice = vault.BytesToAddress([]byte("alice"))
	bob   = vault.BytesToAddress([]byte("bob"))
)

const testLimit = 5

func newTestServer(t *testing.T) *httptest.Server {
	db, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var evs []*event.Event
	for i := range uint64(6) {
		acc := alice
		if i%2 == 1 {
			acc = bob
		}
		ev := event.NewStaked(acc, i/2, big.NewInt(int64(100*(i+1))), 600)
		ev.Seq = i
		ev.Time = 1000 + i*10
		evs = append(evs, ev)
	}
	claim := event.NewClaimedReward(alice, 0, big.NewInt(7))
	claim.Seq = 6
	claim.Time = 2000
	evs = append(evs, claim)
	require.NoError(t, db.NewBatch().AddEvents(evs...).Commit())

	router := mux.NewRouter()
	New(db, testLimit).Mount(router, "/logs/event")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func filter(t *testing.T, ts *httptest.Server, body any) (int, []*FilteredEvent) {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(ts.URL+"/logs/event", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return res.StatusCode, nil
	}
	var fes []*FilteredEvent
	require.NoError(t, json.NewDecoder(res.Body).Decode(&fes))
	return res.StatusCode, fes
}

func u64(v uint64) *uint64 { return &v }

func TestFilter(t *testing.T) {
	ts := newTestServer(t)

	status, fes := filter(t, ts, &EventFilter{Names: []string{event.ClaimedReward}})
	require.Equal(t, http.StatusOK, status)
	require.Len(t, fes, 1)
	assert.Equal(t, alice, fes[0].Account)
	assert.Equal(t, 0, (*big.Int)(fes[0].Reward).Cmp(big.NewInt(7)))

	status, fes = filter(t, ts, &EventFilter{Account: &bob, Order: "desc"})
	require.Equal(t, http.StatusOK, status)
	require.Len(t, fes, 3)
	assert.Equal(t, uint64(5), fes[0].Seq)
	assert.Equal(t, uint64(2), fes[0].StakeIndex)

	status, fes = filter(t, ts, &EventFilter{Range: &Range{Unit: "time", From: u64(1010), To: u64(1030)}})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, fes, 3)

	status, fes = filter(t, ts, &EventFilter{Range: &Range{From: u64(4)}})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, fes, 3)

	status, fes = filter(t, ts, &EventFilter{Options: &Options{Offset: 2, Limit: 2}})
	require.Equal(t, http.StatusOK, status)
	require.Len(t, fes, 2)
	assert.Equal(t, uint64(2), fes[0].Seq)
}

func TestFilterLimits(t *testing.T) {
	ts := newTestServer(t)

	// 7 events exceed the default limit
	status, _ := filter(t, ts, &EventFilter{})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = filter(t, ts, &EventFilter{Options: &Options{Limit: testLimit + 1}})
	assert.Equal(t, http.StatusForbidden, status)

	status, fes := filter(t, ts, &EventFilter{Names: []string{event.Staked}, Account: &alice})
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, fes, 3)
}

func TestFilterBadRequest(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"unknown name", &EventFilter{Names: []string{"Minted"}}},
		{"unknown unit", &EventFilter{Range: &Range{Unit: "block"}}},
		{"inverted range", &EventFilter{Range: &Range{From: u64(5), To: u64(4)}}},
		{"unknown order", &EventFilter{Order: "up"}},
		{"unknown field", map[string]any{"topic": "x"}},
		{"huge offset", &EventFilter{Options: &Options{Offset: 1 << 63, Limit: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := filter(t, ts, tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
		})
	}
}
