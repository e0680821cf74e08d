// Package message holds the inbound/outbound message log: the Message model,
// its SQLite store and the console helpers built on top of it (CSV export,
// tester backend naming, display classes).
package message

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Direction of a message relative to the platform.
type Direction string

const (
	Incoming Direction = "I"
	Outgoing Direction = "O"
)

// Status of a message in its lifecycle.
type Status string

const (
	StatusQueued    Status = "Q"
	StatusSent      Status = "S"
	StatusDelivered Status = "D"
	StatusError     Status = "E"
	StatusHandled   Status = "H"
	StatusReceived  Status = "R"
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusSent:
		return "sent"
	case StatusDelivered:
		return "delivered"
	case StatusError:
		return "error"
	case StatusHandled:
		return "handled"
	case StatusReceived:
		return "received"
	default:
		return "unknown"
	}
}

// Message is one SMS in either direction.
type Message struct {
	ID           string    `json:"id" yaml:"id"`
	Backend      string    `json:"backend" yaml:"backend"`
	Identity     string    `json:"identity" yaml:"identity"`
	Direction    Direction `json:"direction" yaml:"direction"`
	Text         string    `json:"text" yaml:"text"`
	Status       Status    `json:"status" yaml:"status"`
	Date         time.Time `json:"date" yaml:"date"`
	InResponseTo string    `json:"in_response_to,omitempty" yaml:"in_response_to,omitempty"`
}

// NewIncoming creates a received message with a fresh ID.
func NewIncoming(backend, identity, text string) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Backend:   backend,
		Identity:  identity,
		Direction: Incoming,
		Text:      text,
		Status:    StatusReceived,
		Date:      time.Now().UTC(),
	}
}

// NewReply creates a queued outgoing message answering in.
func NewReply(in *Message, text string) *Message {
	return &Message{
		ID:           uuid.New().String(),
		Backend:      in.Backend,
		Identity:     in.Identity,
		Direction:    Outgoing,
		Text:         text,
		Status:       StatusQueued,
		Date:         time.Now().UTC(),
		InResponseTo: in.ID,
	}
}

// Filter selects messages for Query, Monthly and the CSV export.
type Filter struct {
	Backend   string
	Search    string
	Direction Direction
	Since     time.Time
	Limit     int
	Offset    int
}

// MonthlyVolume is the message count of one calendar month.
type MonthlyVolume struct {
	Month    time.Time `json:"month" yaml:"month"`
	Incoming int       `json:"incoming" yaml:"incoming"`
	Outgoing int       `json:"outgoing" yaml:"outgoing"`
	Total    int       `json:"total" yaml:"total"`
}

// DailyCount is the message count of one day.
type DailyCount struct {
	Day   time.Time `json:"day" yaml:"day"`
	Count int       `json:"count" yaml:"count"`
}

// StatusCounts reports messages stuck in the outbound pipeline.
type StatusCounts struct {
	Unsent  int `json:"unsent" yaml:"unsent"`
	Errored int `json:"error" yaml:"error"`
}

// IsTesterBackend reports whether messages on backend come from a test
// console rather than a real carrier.
func IsTesterBackend(backend string) bool {
	return strings.Contains(backend, "tester") || backend == "console"
}

// TesterBackend returns the backend a console tester should inject into
// when looking at backend.
func TesterBackend(backend string) string {
	switch {
	case backend == "":
		return "tester"
	case strings.Contains(backend, "tester"):
		return backend
	default:
		return backend + "_tester"
	}
}

// DisplayClass returns the console style class of msg.
func DisplayClass(msg *Message) string {
	test := IsTesterBackend(msg.Backend)

	if msg.Direction == Incoming {
		if test {
			return "cin"
		}
		return "in"
	}

	switch {
	case test:
		return "cout"
	case msg.Status == StatusDelivered:
		return "delivered"
	case msg.Status == StatusSent:
		return "sent"
	default:
		return "queued"
	}
}
