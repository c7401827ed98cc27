// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies the condition a call was reverted on.
type Kind uint8

const (
	Validation Kind = iota + 1
	State
	Solvency
	Authorization
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case State:
		return "state"
	case Solvency:
		return "solvency"
	case Authorization:
		return "authorization"
	default:
		return "unknown"
	}
}

type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func NewValidation(format string, args ...any) *ErrRevert {
	return New(Validation, fmt.Sprintf(format, args...))
}

func NewState(format string, args ...any) *ErrRevert {
	return New(State, fmt.Sprintf(format, args...))
}

func NewSolvency(format string, args ...any) *ErrRevert {
	return New(Solvency, fmt.Sprintf(format, args...))
}

func NewAuthorization(format string, args ...any) *ErrRevert {
	return New(Authorization, fmt.Sprintf(format, args...))
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf returns the kind of a revert error, 0 if err is not a revert.
func KindOf(err error) Kind {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind
	}
	return 0
}
