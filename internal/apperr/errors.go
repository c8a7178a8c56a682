package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateID       = errors.New("duplicate entity id")
	ErrUnknownSource     = errors.New("unknown source")
	ErrSourceRootMissing = errors.New("source root missing")
)
