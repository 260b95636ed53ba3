package storage

import "errors"

var (
	// ErrNameCollision is returned when a generated file name is still
	// taken after the retry.
	ErrNameCollision = errors.New("file name collision")

	// ErrNilResult is returned when there is nothing to save.
	ErrNilResult = errors.New("result is nil")

	// ErrInvalidFilename is returned for names that would leave the
	// output directory.
	ErrInvalidFilename = errors.New("invalid filename")
)
