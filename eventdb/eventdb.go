// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb indexes vault events and ledger transfers in sqlite for filtering.
package eventdb

import (
	"context"
	"database/sql"
	"math/big"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/stakevault/event"
	"github.com/vechain/stakevault/vault"
)

type EventDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open event db at given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	// a single connection keeps in-memory databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(eventTableSchema + transferTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create an event db in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Close close the event db.
func (db *EventDB) Close() error {
	return db.db.Close()
}

func (db *EventDB) Path() string {
	return db.path
}

func (db *EventDB) DriverVersion() string {
	return db.driverVersion
}

// NextSeq returns the sequence numbers following the last indexed event and transfer.
func (db *EventDB) NextSeq(ctx context.Context) (events uint64, transfers uint64, err error) {
	var maxEvent, maxTransfer sql.NullInt64
	if err := db.db.QueryRowContext(ctx, "SELECT MAX(seq) FROM event").Scan(&maxEvent); err != nil {
		return 0, 0, err
	}
	if err := db.db.QueryRowContext(ctx, "SELECT MAX(seq) FROM transfer").Scan(&maxTransfer); err != nil {
		return 0, 0, err
	}
	if maxEvent.Valid {
		events = uint64(maxEvent.Int64) + 1
	}
	if maxTransfer.Valid {
		transfers = uint64(maxTransfer.Int64) + 1
	}
	return events, transfers, nil
}

func rangeCondition(r *Range, stmt string, args []any) (string, []any) {
	if r == nil {
		return stmt, args
	}
	column := "seq"
	if r.Unit == Time {
		column = "time"
	}
	args = append(args, int64(r.From))
	stmt += " AND " + column + " >= ? "
	if r.To >= r.From {
		args = append(args, int64(r.To))
		stmt += " AND " + column + " <= ? "
	}
	return stmt, args
}

func tail(order Order, options *Options, stmt string, args []any) (string, []any) {
	if order == DESC {
		stmt += " ORDER BY seq DESC "
	} else {
		stmt += " ORDER BY seq ASC "
	}
	if options != nil {
		stmt += " limit ?, ? "
		args = append(args, int64(options.Offset), int64(options.Limit))
	}
	return stmt, args
}

func (db *EventDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*event.Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, "SELECT * FROM event ORDER BY seq ASC")
	}
	var args []any
	stmt := "SELECT * FROM event WHERE 1"
	stmt, args = rangeCondition(filter.Range, stmt, args)

	if len(filter.Names) > 0 {
		stmt += " AND name IN (?" + strings.Repeat(",?", len(filter.Names)-1) + ")"
		for _, name := range filter.Names {
			args = append(args, name)
		}
	}
	if filter.Account != nil {
		args = append(args, filter.Account.Bytes())
		stmt += " AND account = ? "
	}
	if filter.StakeIndex != nil {
		args = append(args, int64(*filter.StakeIndex))
		stmt += " AND stakeIndex = ? "
	}

	stmt, args = tail(filter.Order, filter.Options, stmt, args)
	return db.queryEvents(ctx, stmt, args...)
}

func (db *EventDB) FilterTransfers(ctx context.Context, filter *TransferFilter) ([]*event.Transfer, error) {
	if filter == nil {
		return db.queryTransfers(ctx, "SELECT * FROM transfer ORDER BY seq ASC")
	}
	var args []any
	stmt := "SELECT * FROM transfer WHERE 1"
	stmt, args = rangeCondition(filter.Range, stmt, args)

	if filter.Sender != nil {
		args = append(args, filter.Sender.Bytes())
		stmt += " AND sender = ? "
	}
	if filter.Recipient != nil {
		args = append(args, filter.Recipient.Bytes())
		stmt += " AND recipient = ? "
	}

	stmt, args = tail(filter.Order, filter.Options, stmt, args)
	return db.queryTransfers(ctx, stmt, args...)
}

func (db *EventDB) queryEvents(ctx context.Context, stmt string, args ...any) ([]*event.Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*event.Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq, time, stakeIndex                int64
			lockDuration, dailyRate, penaltyRate int64
			name                                 string
			account, amount, reward, penalty     []byte
		)
		if err := rows.Scan(
			&seq,
			&time,
			&name,
			&account,
			&stakeIndex,
			&amount,
			&reward,
			&penalty,
			&lockDuration,
			&dailyRate,
			&penaltyRate,
		); err != nil {
			return nil, err
		}
		events = append(events, &event.Event{
			Seq:          uint64(seq),
			Time:         uint64(time),
			Name:         name,
			Account:      vault.BytesToAddress(account),
			StakeIndex:   uint64(stakeIndex),
			Amount:       new(big.Int).SetBytes(amount),
			Reward:       new(big.Int).SetBytes(reward),
			Penalty:      new(big.Int).SetBytes(penalty),
			LockDuration: uint64(lockDuration),
			DailyRate:    uint64(dailyRate),
			PenaltyRate:  uint64(penaltyRate),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (db *EventDB) queryTransfers(ctx context.Context, stmt string, args ...any) ([]*event.Transfer, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*event.Transfer
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq, time                 int64
			sender, recipient, amount []byte
		)
		if err := rows.Scan(&seq, &time, &sender, &recipient, &amount); err != nil {
			return nil, err
		}
		transfers = append(transfers, &event.Transfer{
			Seq:       uint64(seq),
			Time:      uint64(time),
			Sender:    vault.BytesToAddress(sender),
			Recipient: vault.BytesToAddress(recipient),
			Amount:    new(big.Int).SetBytes(amount),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transfers, nil
}

// Batch collects records to be written in one transaction.
type Batch struct {
	db        *sql.DB
	events    []*event.Event
	transfers []*event.Transfer
}

func (db *EventDB) NewBatch() *Batch {
	return &Batch{db: db.db}
}

func (b *Batch) AddEvents(events ...*event.Event) *Batch {
	b.events = append(b.events, events...)
	return b
}

func (b *Batch) AddTransfers(transfers ...*event.Transfer) *Batch {
	b.transfers = append(b.transfers, transfers...)
	return b
}

// Len returns the number of pending records.
func (b *Batch) Len() int {
	return len(b.events) + len(b.transfers)
}

func bigBytes(v *big.Int) []byte {
	if v == nil {
		return nil
	}
	return v.Bytes()
}

func (b *Batch) execInTx(proc func(*sql.Tx) error) (err error) {
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Commit writes the batch atomically. Records already indexed are replaced.
func (b *Batch) Commit() error {
	if b.Len() == 0 {
		return nil
	}
	err := b.execInTx(func(tx *sql.Tx) error {
		for _, ev := range b.events {
			if _, err := tx.Exec("INSERT OR REPLACE INTO event(seq, time, name, account, stakeIndex, amount, reward, penalty, lockDuration, dailyRate, penaltyRate) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);",
				int64(ev.Seq),
				int64(ev.Time),
				ev.Name,
				ev.Account.Bytes(),
				int64(ev.StakeIndex),
				bigBytes(ev.Amount),
				bigBytes(ev.Reward),
				bigBytes(ev.Penalty),
				int64(ev.LockDuration),
				int64(ev.DailyRate),
				int64(ev.PenaltyRate),
			); err != nil {
				return err
			}
		}
		for _, tr := range b.transfers {
			if _, err := tx.Exec("INSERT OR REPLACE INTO transfer(seq, time, sender, recipient, amount) VALUES (?, ?, ?, ?, ?);",
				int64(tr.Seq),
				int64(tr.Time),
				tr.Sender.Bytes(),
				tr.Recipient.Bytes(),
				bigBytes(tr.Amount),
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "eventdb commit")
	}
	metricIndexedCount().AddWithLabel(int64(len(b.events)), map[string]string{"type": "event"})
	metricIndexedCount().AddWithLabel(int64(len(b.transfers)), map[string]string{"type": "transfer"})
	b.events = nil
	b.transfers = nil
	return nil
}
