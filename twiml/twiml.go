// Package twiml builds TwiML response documents.
//
// It covers the verbs the channel drivers need (Say, Gather, Message) without
// pulling in a provider SDK. Documents are plain structs encoded with
// encoding/xml, so callers can also assemble raw TwiML by hand and pass it
// through a driver untouched.
package twiml

import (
	"bytes"
	"encoding/xml"
)

// Response is the root TwiML document.
type Response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

// New creates an empty TwiML response.
func New() *Response {
	return &Response{}
}

// Append adds a verb to the response.
func (r *Response) Append(v any) {
	r.Verbs = append(r.Verbs, v)
}

// Say appends a Say verb with no voice or language attributes and returns it
// so the caller can set attributes.
func (r *Response) Say(text string) *Say {
	s := &Say{Text: text}
	r.Verbs = append(r.Verbs, s)
	return s
}

// Gather appends a Gather verb and returns it for nesting prompts.
func (r *Response) Gather(input string) *Gather {
	g := &Gather{Input: input}
	r.Verbs = append(r.Verbs, g)
	return g
}

// Message appends a Message verb with the given body and returns it.
func (r *Response) Message(body string) *Message {
	m := &Message{Body: body}
	r.Verbs = append(r.Verbs, m)
	return m
}

// Render serializes the document, prefixed with the XML declaration and
// followed by a trailing newline.
func (r *Response) Render() (string, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(r); err != nil {
		return "", err
	}
	buf.WriteString("\n")
	return buf.String(), nil
}

// String implements fmt.Stringer. Encoding errors yield an empty string; use
// Render when the error matters.
func (r *Response) String() string {
	s, err := r.Render()
	if err != nil {
		return ""
	}
	return s
}

// Say speaks text to the caller. Voice and Language render as empty
// attributes when pointing at an empty string and are omitted when nil.
type Say struct {
	XMLName  xml.Name `xml:"Say"`
	Voice    *string  `xml:"voice,attr"`
	Language *string  `xml:"language,attr"`
	Loop     int      `xml:"loop,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

// Gather collects digits or speech from the caller.
type Gather struct {
	XMLName   xml.Name `xml:"Gather"`
	Input     string   `xml:"input,attr,omitempty"`
	Action    string   `xml:"action,attr,omitempty"`
	Method    string   `xml:"method,attr,omitempty"`
	NumDigits int      `xml:"numDigits,attr,omitempty"`
	Timeout   int      `xml:"timeout,attr,omitempty"`
	Verbs     []any
}

// Say appends a nested Say prompt and returns it.
func (g *Gather) Say(text string) *Say {
	s := &Say{Text: text}
	g.Verbs = append(g.Verbs, s)
	return s
}

// Message sends an SMS or MMS reply.
type Message struct {
	XMLName xml.Name `xml:"Message"`
	To      string   `xml:"to,attr,omitempty"`
	From    string   `xml:"from,attr,omitempty"`
	Body    string   `xml:"Body"`
	Media   string   `xml:"Media,omitempty"`
}
