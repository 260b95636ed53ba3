// Package storage persists extraction results as JSON files.
//
// LocalStorage writes one file per result into an output directory. When
// no filename is given, the name is derived from the result's domain and
// the current time:
//
//	extraction_{domain}_{YYYYMMDD_HHMMSS}.json
//
// Generated names never overwrite an existing file: a collision is
// retried once with a microsecond suffix. A filename supplied by the
// caller is treated as stable and overwritten.
//
// Every failure is returned as a model.ResultStorageError.
package storage
