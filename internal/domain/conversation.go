package domain

// Session is one widget conversation. It is created once per widget
// lifetime and only mutated by page updates and activity.
type Session struct {
	ID          SessionID
	UserID      UserID
	UserRole    Role
	UserName    string
	UserEmail   string
	CurrentPage string
	CreatedAt   Timestamp
	UpdatedAt   Timestamp // last activity, drives expiry
}

// Message is one transcript entry. Transcripts are append-only.
type Message struct {
	ID        MessageID
	SessionID SessionID
	Sender    Sender
	Content   string
	Type      MessageType
	Metadata  Metadata
	CreatedAt Timestamp
}

// QuickAction is a server-suggested shortcut. Action is opaque and is sent
// back verbatim when invoked.
type QuickAction struct {
	Icon   string `json:"icon" yaml:"icon"`
	Label  string `json:"label" yaml:"label"`
	Action string `json:"action" yaml:"action"`
}

// Action is a button attached to a message or a notification.
type Action struct {
	Label  string `json:"label"`
	Type   string `json:"type,omitempty"` // open_page, assistant_help
	URL    string `json:"url,omitempty"`
	Action string `json:"action,omitempty"`
	Icon   string `json:"icon,omitempty"`
}

// Metadata is the optional structured payload of an assistant message.
type Metadata struct {
	ActionType        string         `json:"action_type,omitempty" yaml:"action_type"`
	Actions           []Action       `json:"actions,omitempty" yaml:"-"`
	DataVisualization map[string]any `json:"data_visualization,omitempty" yaml:"-"`
	Urgency           Urgency        `json:"urgency,omitempty" yaml:"-"`
	Data              map[string]any `json:"data,omitempty" yaml:"data"`
}

func (m Metadata) IsZero() bool {
	return m.ActionType == "" && len(m.Actions) == 0 && len(m.DataVisualization) == 0 &&
		m.Urgency == "" && len(m.Data) == 0
}

// Reply is what a Responder produces for one exchange.
type Reply struct {
	Content  string
	Type     MessageType
	Metadata Metadata
}
