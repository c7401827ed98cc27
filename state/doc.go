// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the vault's persistent storage slots.
// It follows the flow as bellow:
//
//	        o
//	        |
//	[ revertable state ]
//	        |
//	 [ stacked map ] -> [ journal ] -> [ bulk write ]
//	        |
//	  [ lru cache ]
//	        |
//	   [ kv store ]
//
// Every slot is addressed by (owner address, 32 bytes key).
// Nothing reaches the kv store until Commit, and Commit is atomic.
package state
