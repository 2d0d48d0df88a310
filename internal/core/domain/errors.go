package domain

import "errors"

var (
	ErrUnknownSite    = errors.New("unknown site")
	ErrUnknownMachine = errors.New("unknown machine")
	ErrInvalidSource  = errors.New("invalid power source")
)
