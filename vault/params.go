// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

// Time constants are in seconds.
const (
	SecondsPerDay uint64 = 24 * 60 * 60

	// GracePeriod is the window after lock end during which reward can still be claimed.
	GracePeriod = 2 * SecondsPerDay
	// MaxRewardTime caps the elapsed time that accrues reward.
	MaxRewardTime = SecondsPerDay

	// PercentBase is the denominator of daily and penalty rates.
	PercentBase uint64 = 100
)
