package domain

import (
	"encoding/json"
	"strings"
)

// MessageKind is the closed set of message types the assistant knows how
// to render. Tags outside the set parse to KindUnknown and keep their raw
// text in MessageType.Tag.
type MessageKind int

const (
	KindUnknown MessageKind = iota
	KindText
	KindWelcome
	KindError
	KindSuccess
	KindHelp
	KindQuickAction
	KindDataResponse
	KindContextualHelp
	KindUrgent
)

var kindTags = map[MessageKind]string{
	KindText:           "text",
	KindWelcome:        "welcome",
	KindError:          "error",
	KindSuccess:        "success",
	KindHelp:           "help",
	KindQuickAction:    "quick_action",
	KindDataResponse:   "data_response",
	KindContextualHelp: "contextual_help",
	KindUrgent:         "urgent",
}

var tagKinds = func() map[string]MessageKind {
	m := make(map[string]MessageKind, len(kindTags))
	for k, tag := range kindTags {
		m[tag] = k
	}
	return m
}()

// MessageType is a tagged variant over the free-form message_type string.
type MessageType struct {
	Kind MessageKind
	Tag  string
}

// Known message types.
var (
	TypeText           = NewMessageType(KindText)
	TypeWelcome        = NewMessageType(KindWelcome)
	TypeError          = NewMessageType(KindError)
	TypeSuccess        = NewMessageType(KindSuccess)
	TypeHelp           = NewMessageType(KindHelp)
	TypeQuickAction    = NewMessageType(KindQuickAction)
	TypeDataResponse   = NewMessageType(KindDataResponse)
	TypeContextualHelp = NewMessageType(KindContextualHelp)
	TypeUrgent         = NewMessageType(KindUrgent)
)

func NewMessageType(k MessageKind) MessageType {
	return MessageType{Kind: k, Tag: kindTags[k]}
}

// ParseMessageType maps a wire tag to its variant. An empty tag is text.
func ParseMessageType(tag string) MessageType {
	norm := strings.ToLower(strings.TrimSpace(tag))
	if norm == "" {
		return TypeText
	}
	if k, ok := tagKinds[norm]; ok {
		return MessageType{Kind: k, Tag: norm}
	}
	return MessageType{Kind: KindUnknown, Tag: tag}
}

func (t MessageType) String() string {
	if t.Tag == "" {
		return kindTags[KindText]
	}
	return t.Tag
}

func (t MessageType) Known() bool {
	return t.Kind != KindUnknown
}

func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *MessageType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = ParseMessageType(s)
	return nil
}
