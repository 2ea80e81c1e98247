// Package twilio provides Twilio channel drivers for webhook-based chatbots.
//
// Two drivers are included, one per Twilio channel:
//   - MessageDriver: inbound/outbound SMS and MMS
//   - VoiceDriver: voice calls with Say/Gather prompts
//
// Each driver is built per webhook request. It verifies the request's
// X-Twilio-Signature header, decides whether the request belongs to its
// channel, normalizes the form payload into generic incoming messages, and
// renders outgoing messages as TwiML (or, when originating a fresh SMS,
// through the Twilio REST API).
//
// # Quick Start
//
//	drv, err := twilio.Match(r, cfg)
//	if err != nil {
//	    http.NotFound(w, r) // unsigned or foreign request
//	    return
//	}
//	msg := drv.Messages()[0]
//	payload := drv.BuildPayload("hello back", msg, nil)
//	reply, err := drv.Render(r.Context(), payload)
package twilio

// Driver names used for registration and discovery.
const (
	DriverNameMessage = "twilio-message"
	DriverNameVoice   = "twilio-voice"
)

// SignatureHeader carries the HMAC-SHA1 signature of each Twilio webhook.
const SignatureHeader = "X-Twilio-Signature"

// EventIncomingCall names the driver event emitted for a voice call that has
// not collected any digits yet.
const EventIncomingCall = "incoming_call"

// TwiML voice options for the Say verb.
// See: https://www.twilio.com/docs/voice/twiml/say#attributes-voice
const (
	VoiceMan   = "man"
	VoiceWoman = "woman"
	VoiceAlice = "alice"
)

// Gather input modes.
// See: https://www.twilio.com/docs/voice/twiml/gather#attributes-input
const (
	InputDTMF       = "dtmf"
	InputSpeech     = "speech"
	InputDTMFSpeech = "dtmf speech"
)
