package mqtt

import (
	"time"

	"github.com/google/uuid"

	"github.com/tphakala/sherpa-go/internal/sherpa"
)

// TagMessage is the JSON payload published for one tagging call.
//
// Field names are part of the published contract. Add fields, do not rename.
type TagMessage struct {
	ID        string     `json:"id"`
	Source    string     `json:"source"`
	Timestamp time.Time  `json:"timestamp"`
	Events    []TagEvent `json:"events"`
}

// TagEvent is one tag inside a TagMessage.
type TagEvent struct {
	Name        string  `json:"name"`
	Index       int     `json:"index"`
	Probability float32 `json:"probability"`
}

// NewTagMessage converts tagging results into a publishable message. Events
// keep the order the tagger returned them in.
func NewTagMessage(source string, events []sherpa.AudioEvent, now time.Time) TagMessage {
	msg := TagMessage{
		ID:        uuid.NewString(),
		Source:    source,
		Timestamp: now.UTC(),
		Events:    make([]TagEvent, 0, len(events)),
	}
	for _, e := range events {
		msg.Events = append(msg.Events, TagEvent{
			Name:        e.Name,
			Index:       e.Index,
			Probability: e.Prob,
		})
	}
	return msg
}
