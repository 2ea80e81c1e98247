package twilio

import (
	"net/http"
	"strings"

	"github.com/gobotkit/twilio/message"
	"github.com/gobotkit/twilio/security"
)

// InboundEvent is the raw form payload of a webhook request, one value per
// field. It is built once per request and not mutated afterwards.
type InboundEvent map[string]string

// Has reports whether the field is present, even with an empty value.
func (e InboundEvent) Has(key string) bool {
	_, ok := e[key]
	return ok
}

// Get returns the field value, or "" when absent.
func (e InboundEvent) Get(key string) string {
	return e[key]
}

// maxMultipartMemory bounds in-memory buffering of multipart webhook bodies.
const maxMultipartMemory = 1 << 20

// core is the request-scoped state shared by both channel drivers.
type core struct {
	event      InboundEvent
	requestURL string
	signature  string
	config     Config
	validator  *security.RequestValidator
	messages   []*message.Incoming
}

// newCore captures the request payload, URL and signature header. A missing
// auth token is a fatal configuration error and stops processing before any
// validation is attempted.
func newCore(r *http.Request, cfg Config) (core, error) {
	if err := cfg.Validate(); err != nil {
		return core{}, err
	}
	return core{
		event:      eventFromRequest(r),
		requestURL: requestURL(r),
		signature:  r.Header.Get(SignatureHeader),
		config:     cfg,
		validator:  security.NewRequestValidator(cfg.Token),
	}, nil
}

// eventFromRequest decodes the POST form body. Query parameters are not part
// of the event; Twilio signs them as part of the URL instead. A body that
// fails to parse yields an empty event, which no driver will match.
func eventFromRequest(r *http.Request) InboundEvent {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return InboundEvent{}
		}
	} else if err := r.ParseForm(); err != nil {
		return InboundEvent{}
	}

	event := make(InboundEvent, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			event[key] = values[0]
		} else {
			event[key] = ""
		}
	}
	return event
}

// requestURL reconstructs the full URL Twilio signed: scheme, host, path and
// query string. Proxied deployments are expected to pass the original scheme
// through X-Forwarded-Proto.
func requestURL(r *http.Request) string {
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		if r.TLS != nil {
			scheme = "https"
		} else {
			scheme = "http"
		}
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// signatureValid checks the request signature against the shared auth token.
func (c *core) signatureValid() bool {
	return c.validator.Validate(c.signature, c.requestURL, c.event)
}

// User builds the user record for an incoming message. Twilio webhooks carry
// no profile data, so only the ID is set.
func (c *core) User(m *message.Incoming) *message.User {
	return &message.User{ID: m.Sender}
}

// ConversationAnswer treats the message text as an interactive reply.
func (c *core) ConversationAnswer(m *message.Incoming) *message.Answer {
	return &message.Answer{
		Text:        m.Text,
		Value:       m.Text,
		Interactive: true,
		Message:     m,
	}
}

func (c *core) IsBot() bool { return false }

func (c *core) IsConfigured() bool { return true }
