package generate

import "errors"

// ErrUnknownKind is returned by ParseKind for an unsupported task kind.
var ErrUnknownKind = errors.New("unknown task kind")
