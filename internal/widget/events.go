package widget

import (
	"time"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

// State is the lifecycle of a widget's session.
type State int

const (
	StateNew State = iota
	StateStarting
	StateReady
	StateUnavailable
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateUnavailable:
		return "unavailable"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Entry is one line of the transcript as the widget shows it. Assistant
// entries start hidden and become visible when the display queue reveals
// them.
type Entry struct {
	Seq      int
	Sender   domain.Sender
	Label    string
	Content  string
	Type     domain.MessageType
	Metadata domain.Metadata
	At       time.Time
	Visible  bool
}

// Indicator is the passive notification badge and its tooltip.
type Indicator struct {
	Badge    int
	Title    string
	Subtitle string
}

const (
	labelUser       = "👤 You"
	labelAssistant  = "🤖 Invensis AI"
	labelSuggestion = "💡 Smart Suggestion"
)

var (
	idleIndicator   = Indicator{Title: "🤖 Invensis AI Assistant", Subtitle: "Click to chat with me!"}
	activeIndicator = Indicator{Title: "🤖 Chat Active", Subtitle: "I'm here to help!"}
)

type EventKind int

const (
	EventStateChanged EventKind = iota
	EventEntryAdded
	EventTyping
	EventEntryRevealed
	EventQuickActions
	EventIndicator
	EventChatToggled
	EventNotification
)

func (k EventKind) String() string {
	switch k {
	case EventStateChanged:
		return "state_changed"
	case EventEntryAdded:
		return "entry_added"
	case EventTyping:
		return "typing"
	case EventEntryRevealed:
		return "entry_revealed"
	case EventQuickActions:
		return "quick_actions"
	case EventIndicator:
		return "indicator"
	case EventChatToggled:
		return "chat_toggled"
	case EventNotification:
		return "notification"
	default:
		return "unknown"
	}
}

// Event is one observable change. Only the fields relevant to Kind are set.
type Event struct {
	Kind         EventKind
	State        State
	Entry        Entry
	Typing       bool
	QuickActions []domain.QuickAction
	Indicator    Indicator
	Open         bool
	Notification domain.Notification
}
