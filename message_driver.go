package twilio

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gobotkit/twilio/internal/client"
	"github.com/gobotkit/twilio/message"
	"github.com/gobotkit/twilio/twiml"
)

func init() {
	Register(DriverNameMessage, func(r *http.Request, cfg Config) (Driver, error) {
		drv, err := NewMessageDriver(r, cfg)
		if err != nil {
			return nil, err
		}
		return drv, nil
	})
}

// MessageDriver handles the Twilio SMS channel for one webhook request.
type MessageDriver struct {
	core
	client *client.Client
}

// NewMessageDriver builds an SMS driver bound to the request.
func NewMessageDriver(r *http.Request, cfg Config) (*MessageDriver, error) {
	c, err := newCore(r, cfg)
	if err != nil {
		return nil, err
	}
	return &MessageDriver{core: c}, nil
}

func (d *MessageDriver) Name() string { return DriverNameMessage }

// Matches reports whether this is a signed SMS webhook.
func (d *MessageDriver) Matches() bool {
	return d.event.Has("MessageSid") && d.signatureValid()
}

// Messages returns the single incoming SMS, memoized for the request.
func (d *MessageDriver) Messages() []*message.Incoming {
	if d.messages == nil {
		d.messages = []*message.Incoming{
			message.NewIncoming(d.event.Get("Body"), d.event.Get("From"), d.event.Get("To")),
		}
	}
	return d.messages
}

// Event returns nil; the SMS channel has no distinguished sub-events.
func (d *MessageDriver) Event() *message.Event { return nil }

// BuildPayload maps an outgoing message to the SMS intermediate payload.
// Location attachments have nothing Twilio could render and are dropped.
func (d *MessageDriver) BuildPayload(out any, matching *message.Incoming, opts *SendOptions) *Payload {
	p := &Payload{Buttons: []message.Button{}}

	switch m := out.(type) {
	case *message.Question:
		p.Text = m.Text
		if m.Buttons != nil {
			p.Buttons = m.Buttons
		}
	case *twiml.Response:
		p.TwiML = m
	case *message.Outgoing:
		p.Text = m.Text
		if att := m.Attachment; att != nil && att.Kind != message.AttachmentLocation {
			p.Media = att.URL
		}
	case string:
		p.Text = m
	}

	if matching != nil {
		p.Originate = matching.Recipient == ""
		p.Recipient = matching.Sender
	}
	return p
}

// Render produces the TwiML reply, or originates a fresh message through the
// REST API when the payload has no webhook context to answer into.
func (d *MessageDriver) Render(ctx context.Context, p *Payload) (*Reply, error) {
	if p.TwiML != nil {
		return renderTwiML(p.TwiML)
	}

	if p.Originate {
		return d.originate(ctx, p)
	}

	body := p.Text
	for _, b := range p.Buttons {
		body += "\n" + b.Text
	}

	doc := twiml.New()
	msg := doc.Message(body)
	if p.Media != "" {
		msg.Media = p.Media
	}
	return renderTwiML(doc)
}

// originate creates a new outbound message via the REST API and renders the
// resulting message resource as JSON. API failures propagate to the caller
// untouched; there is no retry.
func (d *MessageDriver) originate(ctx context.Context, p *Payload) (*Reply, error) {
	if d.client == nil {
		c, err := client.New(&client.Config{
			AccountSID: d.config.SID,
			AuthToken:  d.config.Token,
			BaseURL:    d.config.APIBaseURL,
		})
		if err != nil {
			return nil, err
		}
		d.client = c
	}

	msg, err := d.client.SendMessage(ctx, &client.SendMessageParams{
		To:       p.Recipient,
		From:     d.config.FromNumber,
		Body:     p.Text,
		MediaURL: p.Media,
	})
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return &Reply{ContentType: "application/json", Body: body}, nil
}

func renderTwiML(doc *twiml.Response) (*Reply, error) {
	s, err := doc.Render()
	if err != nil {
		return nil, err
	}
	return &Reply{ContentType: "text/xml", Body: []byte(s)}, nil
}
