package domain

import "errors"

var (
	ErrElectionNotFound    = errors.New("election not found")
	ErrVoterNotFound       = errors.New("voter not found")
	ErrAlreadyVoted        = errors.New("voter has already voted")
	ErrElectionNotOpen     = errors.New("election is not open for voting")
	ErrTooManyRequests     = errors.New("an active code was already sent recently")
	ErrInvalidCode         = errors.New("invalid verification code")
	ErrCodeExpired         = errors.New("verification code expired")
	ErrTooManyAttempts     = errors.New("too many verification attempts")
	ErrIncompleteSelection = errors.New("ballot is missing a selection for at least one portfolio")
	ErrInvalidSelection    = errors.New("selected candidate does not belong to its portfolio")
	ErrUnauthorized        = errors.New("missing or invalid voting session")
	ErrSessionExpired      = errors.New("voting session expired")
	ErrConflict            = errors.New("a concurrent submission already recorded this ballot")
	ErrDispatchFailed      = errors.New("failed to dispatch verification code")
	ErrInternal            = errors.New("internal server error")
)
