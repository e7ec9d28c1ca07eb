// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tracker

import "errors"

// Errors returned by document operations.
var (
	ErrDocumentNotFound = errors.New("tracker document not found")
	ErrItemNotFound     = errors.New("item not found in tracker")
	ErrAmbiguousID      = errors.New("item id occurs on more than one row")
	ErrAlreadyResolved  = errors.New("item already has a GitHub issue")
	ErrNoInsertionPoint = errors.New("could not find insertion point in tracker")
	ErrMalformedRow     = errors.New("tracker row does not have the expected columns")
	ErrLockBusy         = errors.New("tracker document is locked by another process")
)
