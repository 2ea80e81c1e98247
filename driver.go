package twilio

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"github.com/gobotkit/twilio/message"
	"github.com/gobotkit/twilio/twiml"
)

// Driver is one Twilio channel bound to a single webhook request. A driver is
// constructed per request and never shared; all per-request state (the parsed
// event, the memoized messages) lives inside it.
type Driver interface {
	Name() string

	// Matches reports whether the request belongs to this channel. A request
	// with an invalid signature never matches, even if its shape fits.
	Matches() bool

	// Messages returns the normalized incoming messages. The slice is built
	// once and returned unchanged on every call, so the pointers stay stable
	// for the lifetime of the request.
	Messages() []*message.Incoming

	// Event returns the driver event for distinguished sub-events, such as a
	// voice call that has not collected digits yet, or nil.
	Event() *message.Event

	// User builds the user record for an incoming message.
	User(m *message.Incoming) *message.User

	// ConversationAnswer interprets an incoming message as the reply to a
	// question.
	ConversationAnswer(m *message.Incoming) *message.Answer

	// BuildPayload maps an outgoing message to the channel's intermediate
	// payload. out may be a string, *message.Outgoing, *message.Question or
	// *twiml.Response.
	BuildPayload(out any, matching *message.Incoming, opts *SendOptions) *Payload

	// Render turns a payload into the response body to hand back to Twilio.
	// For SMS origination this performs the REST API call.
	Render(ctx context.Context, p *Payload) (*Reply, error)

	IsBot() bool
	IsConfigured() bool
}

// SendOptions carry per-send overrides for the configured defaults.
type SendOptions struct {
	Voice    string
	Language string
	Input    string
}

// Payload is the channel-specific intermediate form of an outgoing message.
type Payload struct {
	Text    string
	Buttons []message.Button
	Media   string
	// TwiML, when set, is rendered verbatim; no other field is consulted.
	TwiML *twiml.Response

	// Voice channel only.
	Question bool
	Input    string
	Voice    string
	Language string

	// SMS channel only. Originate is set when the matching incoming message
	// has no recipient, meaning the send cannot be a webhook reply and a
	// fresh outbound message must be created through the REST API.
	Originate bool
	Recipient string
}

// Reply is a complete, immediately sendable response body.
type Reply struct {
	ContentType string
	Body        []byte
}

// Factory creates a driver bound to one webhook request.
type Factory func(r *http.Request, cfg Config) (Driver, error)

var registry = map[string]Factory{}

// Register adds a driver factory to the registry.
func Register(name string, factory Factory) {
	registry[name] = factory
}

// GetFactory returns the factory for a driver name.
func GetFactory(name string) (Factory, bool) {
	f, ok := registry[name]
	return f, ok
}

// RegisteredNames returns all registered driver names, sorted.
func RegisteredNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ErrNoDriver is returned by Match when no registered driver claims the
// request. An unsigned or tampered request lands here as well; the host
// decides how to respond, typically with a 404.
var ErrNoDriver = errors.New("twilio: no driver matched the request")

// Match builds each registered driver for the request and returns the first
// one that claims it.
func Match(r *http.Request, cfg Config) (Driver, error) {
	for _, name := range RegisteredNames() {
		drv, err := registry[name](r, cfg)
		if err != nil {
			return nil, err
		}
		if drv.Matches() {
			return drv, nil
		}
	}
	return nil, ErrNoDriver
}
