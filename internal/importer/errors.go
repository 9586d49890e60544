package importer

import "errors"

// Sentinel kinds for import errors.
var (
	ErrParse       = errors.New("match file parse failed")
	ErrInvalidFile = errors.New("invalid match file")
)
