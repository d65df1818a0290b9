package storage

import "errors"

var ErrItemNotFound = errors.New("item not found in storage")
