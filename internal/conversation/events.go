package conversation

import (
	"context"

	"contribot/internal/core"
)

type State string

const (
	StateIdle               State = "idle"
	StateAwaitingYear       State = "awaiting_year"
	StateAwaitingMonth      State = "awaiting_month"
	StateAwaitingCategory   State = "awaiting_category"
	StateAwaitingMemberName State = "awaiting_member_name"
	StateAwaitingAmount     State = "awaiting_amount"
	StateAwaitingProof      State = "awaiting_proof"
	StateAwaitingContinue   State = "awaiting_continue"
)

type EventKind int

const (
	EventStart EventKind = iota
	EventCancel
	EventSelect
	EventText
	EventPhoto
	EventAttachment
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventCancel:
		return "cancel"
	case EventSelect:
		return "select"
	case EventText:
		return "text"
	case EventPhoto:
		return "photo"
	case EventAttachment:
		return "attachment"
	default:
		return "unknown"
	}
}

// FetchFunc downloads the bytes of an uploaded photo. It is only called
// when the session is waiting for a proof.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Event is one inbound input for a session.
type Event struct {
	Kind     EventKind
	Identity core.Identity
	Token    string // EventSelect
	Text     string // EventText
	Fetch    FetchFunc
}

func Start(id core.Identity) Event { return Event{Kind: EventStart, Identity: id} }

func Cancel(id core.Identity) Event { return Event{Kind: EventCancel, Identity: id} }

func Select(id core.Identity, token string) Event {
	return Event{Kind: EventSelect, Identity: id, Token: token}
}

func Text(id core.Identity, text string) Event {
	return Event{Kind: EventText, Identity: id, Text: text}
}

func Photo(id core.Identity, fetch FetchFunc) Event {
	return Event{Kind: EventPhoto, Identity: id, Fetch: fetch}
}

// Attachment is any upload that is not a photo, e.g. a document or sticker.
func Attachment(id core.Identity) Event { return Event{Kind: EventAttachment, Identity: id} }

// Option is one tappable choice. Token is what comes back in Select.
type Option struct {
	Label string
	Token string
}

// Message is one outbound prompt. When Options is set the transport
// renders them as a keyboard with Columns buttons per row.
type Message struct {
	Text    string
	Options []Option
	Columns int
}

// Reply is the ordered output of one Handle call. Err carries the
// recovered error, if any, for logging and metrics. Stored is the number
// of records committed by this call.
type Reply struct {
	Messages []Message
	Err      error
	Stored   int
}

func (r Reply) Empty() bool { return len(r.Messages) == 0 }

func say(text string) Reply {
	return Reply{Messages: []Message{{Text: text}}}
}
