package roots

import "errors"

var (
	ErrInvalidRootURI   = errors.New("invalid root URI")
	ErrUnknownServer    = errors.New("unknown server")
	ErrRootAccessDenied = errors.New("root access denied")
)
