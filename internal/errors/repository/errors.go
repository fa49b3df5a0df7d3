package repository

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderAlreadyExists = errors.New("order already exists")
	ErrItemNotFound       = errors.New("item not found")
	ErrItemAlreadyExists  = errors.New("item already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrItemCacheNotFound  = errors.New("item cache not found")
)
