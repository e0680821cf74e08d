package command

import (
	"context"
	"strings"
)

// HelpHandler lists the keywords of the dispatcher it belongs to.
type HelpHandler struct {
	dispatcher *Dispatcher
}

// NewHelpHandler creates the help handler for d.
func NewHelpHandler(d *Dispatcher) *HelpHandler {
	return &HelpHandler{dispatcher: d}
}

func (h *HelpHandler) Name() string       { return "help" }
func (h *HelpHandler) Keywords() []string { return []string{"help", "?"} }

func (h *HelpHandler) Handle(ctx context.Context, req *Request) (*Reply, error) {
	return &Reply{
		Slug:    "help.keywords",
		Default: "Send one of: {{.keywords}}",
		Vars:    map[string]interface{}{"keywords": strings.Join(h.dispatcher.Keywords(), ", ")},
	}, nil
}
