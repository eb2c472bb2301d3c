// Package chain holds the error taxonomy shared by the Ghost ingestion components.
package chain

import (
	"errors"
	"fmt"
)

var (
	// ErrHeightNotFound signals that the node has no block at the requested height yet.
	ErrHeightNotFound = errors.New("height not found")

	ErrUnrecognizedOutputShape = errors.New("unrecognized output shape")
	ErrUnexpectedOutputVariant = errors.New("unexpected output variant")
	ErrMalformedVote           = errors.New("malformed vote payload")
	ErrMalformedBlock          = errors.New("malformed block")

	// ErrProtocolMismatch is returned when a node response does not have the expected shape.
	ErrProtocolMismatch = errors.New("node protocol mismatch")

	ErrInvariantViolation = errors.New("height invariant violation")
)

// DecodeError locates a decode failure inside a block.
type DecodeError struct {
	Height uint64
	Hash   string
	// TxIndex and OutputIndex are -1 when the failure is not tied to a transaction or output.
	TxIndex     int
	OutputIndex int
	Err         error
}

// NewDecodeError builds a DecodeError not tied to a specific output.
func NewDecodeError(height uint64, hash string, err error) *DecodeError {
	return &DecodeError{Height: height, Hash: hash, TxIndex: -1, OutputIndex: -1, Err: err}
}

func (e *DecodeError) Error() string {
	switch {
	case e.TxIndex >= 0 && e.OutputIndex >= 0:
		return fmt.Sprintf("decode block %d (%s) tx %d output %d: %v", e.Height, e.Hash, e.TxIndex, e.OutputIndex, e.Err)
	case e.TxIndex >= 0:
		return fmt.Sprintf("decode block %d (%s) tx %d: %v", e.Height, e.Hash, e.TxIndex, e.Err)
	default:
		return fmt.Sprintf("decode block %d (%s): %v", e.Height, e.Hash, e.Err)
	}
}

func (e *DecodeError) Unwrap() error { return e.Err }

// InvariantViolationError reports a mismatch between the stored height sum and the expected one.
type InvariantViolationError struct {
	Min         uint64
	Max         uint64
	Count       uint64
	StoredSum   uint64
	ExpectedSum uint64
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("%v: heights [%d, %d] count %d: stored sum %d, expected %d",
		ErrInvariantViolation, e.Min, e.Max, e.Count, e.StoredSum, e.ExpectedSum)
}

func (e *InvariantViolationError) Unwrap() error { return ErrInvariantViolation }
