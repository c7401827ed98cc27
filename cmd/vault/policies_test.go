// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakevault/kv"
	"github.com/vechain/stakevault/ledger"
	"github.com/vechain/stakevault/node"
	"github.com/vechain/stakevault/staker"
	"github.com/vechain/stakevault/state"
	"github.com/vechain/stakevault/vault"
)

func TestParsePolicies(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []lockPolicy
		wantErr string
	}{
		{
			name:  "empty",
			input: "",
		},
		{
			name: "valid",
			input: `policies:
  - duration: 600
    dailyRate: 10
    penaltyRate: 10
  - duration: 86400
    dailyRate: 0
    penaltyRate: 5
`,
			want: []lockPolicy{{600, 10, 10}, {86400, 0, 5}},
		},
		{
			name: "zero duration",
			input: `policies:
  - duration: 0
    dailyRate: 1
`,
			wantErr: "duration must be greater than zero",
		},
		{
			name: "duplicated",
			input: `policies:
  - duration: 600
  - duration: 600
`,
			wantErr: "duplicated duration 600",
		},
		{
			name: "unknown field",
			input: `policies:
  - duration: 600
    rate: 1
`,
			wantErr: "field rate not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePolicies(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadPolicies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policies.yaml")
	require.NoError(t, os.WriteFile(path, []byte("policies:\n  - duration: 600\n    dailyRate: 10\n"), 0o600))

	policies, err := loadPolicies(path)
	require.NoError(t, err)
	assert.Equal(t, []lockPolicy{{Duration: 600, DailyRate: 10}}, policies)

	_, err = loadPolicies(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyPolicies(t *testing.T) {
	db, err := kv.NewMem()
	require.NoError(t, err)
	defer db.Close()

	admin := vault.BytesToAddress([]byte("admin"))
	n := node.New(state.New(db, 0), vault.ClockFunc(func() uint64 { return 1000 }), node.Options{
		VaultAddress: defaultVaultAddress,
	})
	require.NoError(t, n.Initialize(admin))

	policies := []lockPolicy{{600, 10, 10}, {3600, 20, 5}}
	changed, err := applyPolicies(n, admin, policies)
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	// unchanged entries are skipped
	policies[1].PenaltyRate = 6
	changed, err = applyPolicies(n, admin, policies)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	require.NoError(t, n.Read(func(s *staker.Staker, _ *ledger.Ledger, _ uint64) error {
		p, err := s.LockPolicy(3600)
		require.NoError(t, err)
		assert.Equal(t, uint64(20), p.DailyRate)
		assert.Equal(t, uint64(6), p.PenaltyRate)
		return nil
	}))

	_, err = applyPolicies(n, vault.BytesToAddress([]byte("mallory")), []lockPolicy{{600, 1, 1}})
	assert.Error(t, err)
}
