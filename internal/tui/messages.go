package tui

import (
	"time"

	"github.com/msto63/nsms/internal/message"
	"github.com/msto63/nsms/internal/router"
)

// entry is one line of the conversation
type entry struct {
	direction message.Direction // empty for console notices
	identity  string
	text      string
	class     string
	handler   string
	err       bool
	at        time.Time
}

// sentMsg is sent when the router has processed a typed text
type sentMsg struct {
	index  int // entry of the incoming text
	result *router.Result
	err    error
}

// replyMsg carries a message the tester backend sent out
type replyMsg struct {
	msg *message.Message
}

// repliesClosedMsg signals that the reply subscription ended
type repliesClosedMsg struct{}
