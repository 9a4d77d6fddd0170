// Package transcript is the append-only conversation log. Bubbles are
// content-addressed and chained to their predecessor, so the log is a single
// ordered chain.
package transcript

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/papercomputeco/sqlchat/pkg/render"
)

// Role tags who a bubble came from.
type Role string

const (
	User      Role = "user"
	Assistant Role = "assist"
)

// Bubble is one rendered message in the conversation.
type Bubble struct {
	// ID is the content-addressed identifier (SHA-256, hex-encoded)
	ID string `json:"id"`

	// PrevID links to the preceding bubble. Nil for the first bubble.
	PrevID *string `json:"prev_id"`

	Role Role   `json:"role"`
	Text string `json:"text"`

	// Markdown marks Text as markdown; otherwise it is plain text.
	Markdown bool `json:"markdown"`

	// HTML is derived from Text when the bubble is created.
	HTML string `json:"html"`
}

// NewBubble creates a bubble following prev and renders its HTML.
func NewBubble(role Role, text string, markdown bool, prev *Bubble) *Bubble {
	b := &Bubble{
		Role:     role,
		Text:     text,
		Markdown: markdown,
	}

	if prev != nil {
		b.PrevID = &prev.ID
	}

	if markdown {
		b.HTML = render.Markdown(text)
	} else {
		b.HTML = render.EscapeHTML(text)
	}

	b.ID = b.computeID()
	return b
}

type input struct {
	Prev     string `json:"prev"`
	Role     Role   `json:"role"`
	Text     string `json:"text"`
	Markdown bool   `json:"markdown"`
}

func (b *Bubble) computeID() string {
	i := &input{
		Role:     b.Role,
		Text:     b.Text,
		Markdown: b.Markdown,
	}

	if b.PrevID != nil {
		i.Prev = *b.PrevID
	}

	// Canonical JSON encoding for deterministic hashing
	data, err := json.Marshal(i)
	if err != nil {
		panic("failed to marshal bubble id input: " + err.Error())
	}

	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
