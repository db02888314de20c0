package gateway

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rzbill/segstream/internal/catalog"
	"github.com/rzbill/segstream/internal/segmentlog"
)

// toStatus maps store errors onto gRPC status codes.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, catalog.ErrScopeNotFound), errors.Is(err, catalog.ErrStreamNotFound), errors.Is(err, segmentlog.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, segmentlog.ErrSealed):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func invalid(format string, args ...any) error {
	return status.Error(codes.InvalidArgument, fmt.Sprintf(format, args...))
}

func stale(format string, args ...any) error {
	return status.Error(codes.FailedPrecondition, fmt.Sprintf(format, args...))
}

// nameRule validates scope and stream names.
type nameRule struct {
	re *regexp.Regexp
}

func (r nameRule) check(kind, name string) error {
	if name == "" {
		return invalid("%s name is required", kind)
	}
	if strings.HasPrefix(name, "_") {
		return invalid("%s name %q: leading underscore is reserved", kind, name)
	}
	if !r.re.MatchString(name) {
		return invalid("%s name %q does not match %s", kind, name, r.re.String())
	}
	return nil
}
