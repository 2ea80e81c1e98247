package twilio

import (
	"context"
	"net/http"

	"github.com/gobotkit/twilio/message"
	"github.com/gobotkit/twilio/twiml"
)

func init() {
	Register(DriverNameVoice, func(r *http.Request, cfg Config) (Driver, error) {
		drv, err := NewVoiceDriver(r, cfg)
		if err != nil {
			return nil, err
		}
		return drv, nil
	})
}

// VoiceDriver handles the Twilio voice channel for one webhook request.
type VoiceDriver struct {
	core
}

// NewVoiceDriver builds a voice driver bound to the request.
func NewVoiceDriver(r *http.Request, cfg Config) (*VoiceDriver, error) {
	c, err := newCore(r, cfg)
	if err != nil {
		return nil, err
	}
	return &VoiceDriver{core: c}, nil
}

func (d *VoiceDriver) Name() string { return DriverNameVoice }

// Matches reports whether this is a signed voice webhook.
func (d *VoiceDriver) Matches() bool {
	return d.event.Has("CallSid") && d.signatureValid()
}

// Messages returns the single incoming message, memoized for the request.
// The text carries the collected digits, which may still be empty at the
// start of a call.
func (d *VoiceDriver) Messages() []*message.Incoming {
	if d.messages == nil {
		d.messages = []*message.Incoming{
			message.NewIncoming(d.event.Get("Digits"), d.event.Get("CallSid"), d.event.Get("To")),
		}
	}
	return d.messages
}

// Event returns an incoming_call event for calls that have not collected any
// digits yet, carrying the raw webhook payload.
func (d *VoiceDriver) Event() *message.Event {
	if d.event.Has("CallSid") && !d.event.Has("Digits") {
		return &message.Event{Name: EventIncomingCall, Payload: d.event}
	}
	return nil
}

// BuildPayload maps an outgoing message to the voice intermediate payload.
// Attachments cannot be spoken and are ignored.
func (d *VoiceDriver) BuildPayload(out any, matching *message.Incoming, opts *SendOptions) *Payload {
	p := &Payload{}

	switch m := out.(type) {
	case *message.Question:
		p.Text = m.Text
		p.Question = true
		p.Buttons = []message.Button{}
		if m.Buttons != nil {
			p.Buttons = m.Buttons
		}
	case *twiml.Response:
		p.TwiML = m
	case *message.Outgoing:
		p.Text = m.Text
	case string:
		p.Text = m
	}

	if opts != nil {
		p.Voice = opts.Voice
		p.Language = opts.Language
		p.Input = opts.Input
	}
	return p
}

// Render produces the TwiML reply: a bare Say, or for questions a Gather
// wrapping the prompt followed by one Say per button text.
func (d *VoiceDriver) Render(ctx context.Context, p *Payload) (*Reply, error) {
	if p.TwiML != nil {
		return renderTwiML(p.TwiML)
	}

	voice := d.config.Voice
	if p.Voice != "" {
		voice = p.Voice
	}
	language := d.config.Language
	if p.Language != "" {
		language = p.Language
	}

	say := func(text string) *twiml.Say {
		return &twiml.Say{Voice: &voice, Language: &language, Text: text}
	}

	doc := twiml.New()
	if p.Question {
		input := p.Input
		if input == "" {
			input = d.config.Input
		}
		if input == "" {
			input = InputDTMF
		}
		gather := doc.Gather(input)
		gather.Verbs = append(gather.Verbs, say(p.Text))
		for _, b := range p.Buttons {
			gather.Verbs = append(gather.Verbs, say(b.Text))
		}
	} else {
		doc.Append(say(p.Text))
	}
	return renderTwiML(doc)
}
