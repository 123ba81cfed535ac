package chain

import (
	"errors"
	"fmt"
)

// ErrReverted means the transaction was mined but the chain reports
// failure status.
var ErrReverted = errors.New("transaction failed")

// QueryError wraps a failed read call against a token contract.
type QueryError struct {
	Op  string // e.g. "allowance 0x..."
	Err error
}

func (e *QueryError) Error() string { return fmt.Sprintf("chain query %s: %v", e.Op, e.Err) }
func (e *QueryError) Unwrap() error { return e.Err }

// SubmissionError wraps a failure to sign or broadcast a transaction.
type SubmissionError struct {
	Op  string
	Err error
}

func (e *SubmissionError) Error() string { return fmt.Sprintf("submit %s: %v", e.Op, e.Err) }
func (e *SubmissionError) Unwrap() error { return e.Err }

// ConfirmationError wraps a failure while waiting for a broadcast
// transaction to be mined. The transaction may still be mined later.
type ConfirmationError struct {
	TxHash string
	Err    error
}

func (e *ConfirmationError) Error() string { return fmt.Sprintf("confirm %s: %v", e.TxHash, e.Err) }
func (e *ConfirmationError) Unwrap() error { return e.Err }
