package engine

import "errors"

// ErrProjectNotFound means the project directory is missing on disk. It is
// fatal for the calling operation.
var ErrProjectNotFound = errors.New("project not found")

// ErrAlreadyIndexing means another indexing run holds the project lock. The
// caller may retry later; nothing is queued.
var ErrAlreadyIndexing = errors.New("project is already being indexed")
