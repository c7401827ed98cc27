// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import "github.com/vechain/stakevault/metrics"

var metricOperationCount = metrics.LazyLoadCounterVec("staker_operation_count", []string{"op", "result"})
