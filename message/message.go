// Package message defines the generic message model exchanged between a host
// bot framework and channel drivers.
package message

// Incoming represents a normalized message received from a channel. Drivers
// hand out pointers so conversation code keeps a stable handle on the same
// message across repeated lookups within one request.
type Incoming struct {
	Text      string // text body, or pressed digits for voice
	Sender    string // sender identifier (phone number or call sid)
	Recipient string // recipient identifier (the number that was contacted)
}

// NewIncoming creates an incoming message.
func NewIncoming(text, sender, recipient string) *Incoming {
	return &Incoming{Text: text, Sender: sender, Recipient: recipient}
}

// Outgoing is a generic outbound message with an optional attachment.
type Outgoing struct {
	Text       string
	Attachment *Attachment
}

// NewOutgoing creates an outgoing message.
func NewOutgoing(text string) *Outgoing {
	return &Outgoing{Text: text}
}

// WithAttachment attaches media to the message and returns it for chaining.
func (o *Outgoing) WithAttachment(a *Attachment) *Outgoing {
	o.Attachment = a
	return o
}

// AttachmentKind discriminates attachment types.
type AttachmentKind string

const (
	AttachmentImage    AttachmentKind = "image"
	AttachmentAudio    AttachmentKind = "audio"
	AttachmentVideo    AttachmentKind = "video"
	AttachmentFile     AttachmentKind = "file"
	AttachmentLocation AttachmentKind = "location"
)

// Attachment is a media item carried by an outgoing message. Location
// attachments have no URL a provider could fetch.
type Attachment struct {
	Kind AttachmentKind
	URL  string
}

// ImageURL is a convenience constructor for image attachments.
func ImageURL(url string) *Attachment {
	return &Attachment{Kind: AttachmentImage, URL: url}
}

// Location is a convenience constructor for location attachments.
func Location() *Attachment {
	return &Attachment{Kind: AttachmentLocation}
}

// Button is one selectable option of a Question.
type Button struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

// Question is an outbound prompt with optional buttons.
type Question struct {
	Text    string
	Buttons []Button
}

// NewQuestion creates a question without buttons.
func NewQuestion(text string) *Question {
	return &Question{Text: text}
}

// AddButton appends a button and returns the question for chaining.
func (q *Question) AddButton(b Button) *Question {
	q.Buttons = append(q.Buttons, b)
	return q
}

// User identifies the sender of an incoming message. Twilio webhooks expose
// no profile data, so only ID is ever populated by the drivers here.
type User struct {
	ID        string
	FirstName string
	LastName  string
	Username  string
}

// Answer is an incoming message interpreted as the reply to a question.
type Answer struct {
	Text        string
	Value       string
	Interactive bool
	Message     *Incoming
}

// Event is a named driver event, such as an incoming call, carrying the raw
// webhook payload it was derived from.
type Event struct {
	Name    string
	Payload map[string]string
}
