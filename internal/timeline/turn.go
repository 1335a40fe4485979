package timeline

import "time"

// Sender identifies who produced a turn.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Kind distinguishes durable turns from the in-flight status overlay.
type Kind int

const (
	KindNormal          Kind = iota // Durable conversational turn
	KindTransientStatus             // Placeholder while a remote operation runs
)

// StatusTag names the remote operation a transient status stands for.
type StatusTag string

const (
	TagNone      StatusTag = ""
	TagWebLookup StatusTag = "webLookup"
	TagRetrieval StatusTag = "retrieval"
)

// Valid reports whether tag can label a transient status.
func (t StatusTag) Valid() bool {
	return t == TagWebLookup || t == TagRetrieval
}

// StatusText returns the placeholder text shown for tag.
func StatusText(tag StatusTag) string {
	switch tag {
	case TagWebLookup:
		return "Web scraping in progress..."
	case TagRetrieval:
		return "Retrieving information from knowledge base..."
	default:
		return ""
	}
}

// Turn is a single timeline entry.
type Turn struct {
	Seq       int
	Text      string
	Sender    Sender
	Kind      Kind
	StatusTag StatusTag
	Timestamp time.Time
}

// IsTransient reports whether t is the status overlay.
func (t Turn) IsTransient() bool {
	return t.Kind == KindTransientStatus
}
