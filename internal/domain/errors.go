package domain

import "errors"

var (
	ErrPoolExhausted     = errors.New("no payment handlers available")
	ErrTokenNotFound     = errors.New("payment token not found")
	ErrInvalidTransition = errors.New("invalid token status transition")
	ErrInvalidSignature  = errors.New("invalid webhook signature")
	ErrReplayDetected    = errors.New("webhook timestamp outside replay window")
)
