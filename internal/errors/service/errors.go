package service

import "errors"

var (
	ErrItemNotFound      = errors.New("item not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidOrder      = errors.New("invalid order")
	ErrInvalidItem       = errors.New("invalid item")
	ErrInvalidUser       = errors.New("invalid user")
	ErrRateLimitExceeded = errors.New("order rate limit exceeded")
)
