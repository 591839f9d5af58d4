package service

import "errors"

var (
	ErrPartnerNotFound = errors.New("partner not found")
	ErrPartnerInactive = errors.New("partner is inactive")
	ErrNoFeePolicy     = errors.New("no effective fee policy")
	ErrInvalidAmount   = errors.New("amount must be a positive integer")
	ErrInvalidQuery    = errors.New("invalid payment query")
)
