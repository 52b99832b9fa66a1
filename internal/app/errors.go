package app

import "errors"

var (
	ErrAccessDenied = errors.New("access denied")
	ErrAccessCheck  = errors.New("access check failed")
	ErrPersistence  = errors.New("notes persistence failed")
	ErrNotJoined    = errors.New("not joined to this meeting")
	ErrRateLimited  = errors.New("too many join attempts")
)
