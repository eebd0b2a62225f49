package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyName is returned for characters without an identity.
var ErrEmptyName = errors.New("character name is empty")

// Character is the persona used to condition generation.
type Character struct {
	Name            string          `json:"name"`
	Username        string          `json:"username,omitempty"`
	System          string          `json:"system"`
	Bio             []string        `json:"bio"`
	Lore            []string        `json:"lore"`
	Knowledge       []string        `json:"knowledge"`
	Topics          []string        `json:"topics"`
	Adjectives      []string        `json:"adjectives,omitempty"`
	PostExamples    []string        `json:"postExamples"`
	MessageExamples MessageExamples `json:"messageExamples,omitempty"`
}

// Validate checks the invariants required before any generation call.
func (c *Character) Validate() error {
	if c == nil || strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Handle returns the username used in prompts, falling back to the name.
func (c *Character) Handle() string {
	if c.Username != "" {
		return c.Username
	}
	return c.Name
}

// MessageText is the renderable text of a message example.
type MessageText string

// UnmarshalJSON accepts either a bare string or an object with a text field.
func (t *MessageText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = MessageText(s)
		return nil
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("message content: %w", err)
	}
	*t = MessageText(obj.Text)
	return nil
}

// MarshalJSON writes the content in object form.
func (t MessageText) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Text string `json:"text"`
	}{Text: string(t)})
}

// MessageExample is a single example message.
type MessageExample struct {
	User    string      `json:"user,omitempty"`
	Content MessageText `json:"content"`
}

// MessageExamples decodes both a flat list of messages and a list of
// conversations (list of lists), flattening the latter.
type MessageExamples []MessageExample

// UnmarshalJSON implements json.Unmarshaler.
func (m *MessageExamples) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("messageExamples: %w", err)
	}
	out := make(MessageExamples, 0, len(raw))
	for _, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '[' {
			var convo []MessageExample
			if err := json.Unmarshal(item, &convo); err != nil {
				return fmt.Errorf("messageExamples conversation: %w", err)
			}
			out = append(out, convo...)
			continue
		}
		var msg MessageExample
		if err := json.Unmarshal(item, &msg); err != nil {
			return fmt.Errorf("messageExamples entry: %w", err)
		}
		out = append(out, msg)
	}
	*m = out
	return nil
}

// Texts returns the non-empty message texts in order.
func (m MessageExamples) Texts() []string {
	var texts []string
	for _, msg := range m {
		if msg.Content != "" {
			texts = append(texts, string(msg.Content))
		}
	}
	return texts
}

// ReferenceCorpus returns post examples followed by message example texts,
// dropping empty entries.
func (c *Character) ReferenceCorpus() []string {
	var corpus []string
	for _, p := range c.PostExamples {
		if p != "" {
			corpus = append(corpus, p)
		}
	}
	return append(corpus, c.MessageExamples.Texts()...)
}
