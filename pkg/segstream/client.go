package segstream

import (
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/go4org/hashtriemap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/rzbill/segstream/pkg/id"
	"github.com/rzbill/segstream/pkg/log"
)

// DefaultMaxEventSize is the largest payload a writer accepts unless
// WithMaxEventSize says otherwise.
const DefaultMaxEventSize = 1 << 20

var defaultNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,255}$`)

// Client is the entry point of the engine. It is safe for concurrent use;
// the handles it opens are not.
type Client struct {
	t            Transport
	logger       log.Logger
	maxEventSize int
	names        *regexp.Regexp

	handles hashtriemap.HashTrieMap[id.ID, handle]
	closed  atomic.Bool
}

// handle is an open writer or reader tracked for leak cleanup.
type handle interface {
	kind() string
	target() StreamID
	release()
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. The default discards output.
func WithLogger(l log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxEventSize sets the client-side payload limit.
func WithMaxEventSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxEventSize = n
		}
	}
}

// WithNamePattern replaces the scope and stream naming rule. Names starting
// with an underscore stay reserved.
func WithNamePattern(re *regexp.Regexp) Option {
	return func(c *Client) {
		if re != nil {
			c.names = re
		}
	}
}

// New builds a client over t. The client owns t and closes it in Close.
func New(t Transport, opts ...Option) *Client {
	c := &Client{
		t:            t,
		logger:       log.NewNopLogger(),
		maxEventSize: DefaultMaxEventSize,
		names:        defaultNamePattern,
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.WithComponent("segstream")
	return c
}

// Dial connects to a gateway at addr over plaintext gRPC. The connection is
// established lazily; an unreachable gateway surfaces as ErrUnavailable on
// the first call.
func Dial(addr string, opts ...Option) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Op: "Dial", Msg: err.Error(), Err: err}
	}
	t := NewGRPCTransport(conn)
	t.closer = conn
	return New(t, opts...), nil
}

// Close releases every handle still open and then the transport. Handles
// released here end up Aborted.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.handles.Range(func(key id.ID, h handle) bool {
		c.logger.Warn("releasing leaked handle", log.Str("handle", h.kind()), log.Str("stream", h.target().String()), log.Str("id", key.String()))
		h.release()
		return true
	})
	return c.t.Close()
}

func (c *Client) track(key id.ID, h handle) { c.handles.Store(key, h) }

func (c *Client) untrack(key id.ID) { c.handles.LoadAndDelete(key) }

func (c *Client) checkOpen(op string) error {
	if c.closed.Load() {
		return newErr(KindInvalidState, op, "", "", "client is closed")
	}
	return nil
}

// checkName applies the naming rule to a scope or stream name.
func (c *Client) checkName(op, scope, stream, what, name string) error {
	switch {
	case name == "":
		return newErr(KindInvalidArgument, op, scope, stream, "%s name is empty", what)
	case strings.HasPrefix(name, "_"):
		return newErr(KindInvalidArgument, op, scope, stream, "%s name %q is reserved", what, name)
	case !c.names.MatchString(name):
		return newErr(KindInvalidArgument, op, scope, stream, "%s name %q does not match %s", what, name, c.names)
	}
	return nil
}

func (c *Client) checkStream(op, scope, stream string) error {
	if err := c.checkOpen(op); err != nil {
		return err
	}
	if err := c.checkName(op, scope, stream, "scope", scope); err != nil {
		return err
	}
	return c.checkName(op, scope, stream, "stream", stream)
}

func logStream(scope, stream string) []log.Field {
	return []log.Field{log.Str("scope", scope), log.Str("stream", stream)}
}
