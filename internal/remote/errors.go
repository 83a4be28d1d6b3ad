package remote

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorKind is the coarse classification of a remote-store failure. The
// sync layer keys its fallback behavior off these, never off vendor
// error codes.
type ErrorKind string

const (
	KindPermissionDenied ErrorKind = "permission-denied"
	KindUnavailable      ErrorKind = "network-unavailable"
	KindUnauthenticated  ErrorKind = "unauthenticated"
	KindUnknown          ErrorKind = "unknown"
)

// ErrNetworkDisabled is returned by every operation while the network is
// administratively disabled.
var ErrNetworkDisabled = errors.New("remote network is disabled")

// Classify maps a remote-store error onto the error taxonomy.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, ErrNetworkDisabled) {
		return KindUnavailable
	}
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.PermissionDenied:
			return KindPermissionDenied
		case codes.Unavailable, codes.DeadlineExceeded:
			return KindUnavailable
		case codes.Unauthenticated:
			return KindUnauthenticated
		}
	}
	return KindUnknown
}
