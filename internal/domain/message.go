package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const PartTypeText = "text"

// Message is a single turn within a conversation. The ID is assigned by
// the streaming session when the message first appears and stays stable
// for the whole streaming lifecycle, so a retried save overwrites the
// same row instead of duplicating it.
type Message struct {
	ID             string    `json:"id" gorm:"primarykey"`
	ConversationID string    `json:"conversation_id" gorm:"not null;index"`
	Role           string    `json:"role" gorm:"not null"`
	Parts          Parts     `json:"parts" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at"`
}

// Text concatenates the text fragments of the message.
func (m *Message) Text() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if p.Type == PartTypeText {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// Part is one content fragment of a message. Text fragments are the
// only kind this application produces; fragments of any other type are
// carried through byte-for-byte as they arrived.
type Part struct {
	Type string
	Text string

	raw json.RawMessage
}

// TextPart builds a plain text fragment.
func TextPart(text string) Part {
	return Part{Type: PartTypeText, Text: text}
}

func (p *Part) UnmarshalJSON(b []byte) error {
	var probe struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return err
	}
	p.Type = probe.Type
	p.Text = probe.Text
	if probe.Type != PartTypeText {
		p.raw = append(json.RawMessage(nil), b...)
	} else {
		p.raw = nil
	}
	return nil
}

func (p Part) MarshalJSON() ([]byte, error) {
	if p.raw != nil {
		return p.raw, nil
	}
	return json.Marshal(struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{p.Type, p.Text})
}

// Parts is the ordered fragment sequence of a message, stored as a
// single JSON column.
type Parts []Part

func (p Parts) Value() (driver.Value, error) {
	if p == nil {
		p = Parts{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *Parts) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return errors.New("unsupported source type for message parts")
	}
}
