// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

// create a table for vault events
const eventTableSchema = `
create table if not exists event (
	seq integer primary key,
	time integer,
	name text,
	account blob(20),
	stakeIndex integer,
	amount blob,
	reward blob,
	penalty blob,
	lockDuration integer,
	dailyRate integer,
	penaltyRate integer
);

CREATE INDEX if not exists eventTimeIndex on event(time);
CREATE INDEX if not exists eventNameIndex on event(name);
CREATE INDEX if not exists eventAccountIndex on event(account);
`

// create a table for ledger transfers
const transferTableSchema = `
create table if not exists transfer (
	seq integer primary key,
	time integer,
	sender blob(20),
	recipient blob(20),
	amount blob
);

CREATE INDEX if not exists transferTimeIndex on transfer(time);
CREATE INDEX if not exists transferSenderIndex on transfer(sender);
CREATE INDEX if not exists transferRecipientIndex on transfer(recipient);
`
