package survey

import "errors"

var (
	ErrNotFound      = errors.New("survey not found")
	ErrFloorNotFound = errors.New("floor assessment not found")
	ErrInvalidInput  = errors.New("invalid input")
)
