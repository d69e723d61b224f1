package service

import "errors"

// ErrFolderAccessDenied is returned when the caller names a folder it cannot
// read. The whole request is rejected rather than silently narrowed.
var ErrFolderAccessDenied = errors.New("folder access denied")
