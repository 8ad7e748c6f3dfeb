package wager

import "errors"

// Precondition violations surfaced by the core. Every operation either fully
// succeeds or fails with one of these; callers map them to HTTP status codes.
var (
	ErrStakeCapExceeded       = errors.New("stake amount exceeds player cap")
	ErrStakeExceedsLimit      = errors.New("stake amount exceeds progressive stake limit")
	ErrSuspiciousStakePattern = errors.New("suspicious stake pattern detected")
	ErrInsufficientFunds      = errors.New("insufficient funds for stake")
	ErrInvalidTimeControl     = errors.New("invalid time control type")
	ErrSameParticipant        = errors.New("participants must be distinct")

	ErrAlreadyConfirmed    = errors.New("match has already been confirmed")
	ErrConfirmationExpired = errors.New("confirmation window has expired")
	ErrNotConfirmed        = errors.New("match has not been confirmed")

	ErrGameAlreadyOver = errors.New("game has already ended")
	ErrGameNotOver     = errors.New("game is not over yet")
	ErrNotYourTurn     = errors.New("not the player's turn")
	ErrNotParticipant  = errors.New("caller is not a participant in the match")
	ErrInvalidResult   = errors.New("invalid result type")

	ErrAlreadySettled         = errors.New("match has already been settled")
	ErrNoWinnerYet            = errors.New("no winner has been declared yet")
	ErrInvalidWinner          = errors.New("invalid winner for this match")
	ErrIdenticalRoyaltyPayees = errors.New("royalty recipients must be distinct")
	ErrInsufficientEscrow     = errors.New("insufficient escrow balance for settlement")

	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	ErrProfileMismatch    = errors.New("profile does not match match participant")
	ErrAlreadyInitialized = errors.New("player profile already initialized")
	ErrUnauthorized       = errors.New("unauthorized")
)
