package command

import (
	"context"
	"strconv"

	nsmserror "github.com/msto63/nsms/foundation/core/error"
	"github.com/msto63/nsms/internal/registration"
)

// RemindHandler handles "REMIND <hour>". Hours may be typed as 7, 07 or
// 0730; only the hour is kept.
type RemindHandler struct {
	store *registration.Store
}

// NewRemindHandler creates the reminder handler.
func NewRemindHandler(store *registration.Store) *RemindHandler {
	return &RemindHandler{store: store}
}

func (h *RemindHandler) Name() string       { return "remind" }
func (h *RemindHandler) Keywords() []string { return []string{"remind", "rem"} }

func (h *RemindHandler) Handle(ctx context.Context, req *Request) (*Reply, error) {
	if err := requireRegistration(ctx, h.store, req.Sender, "remind.not_registered"); err != nil {
		return nil, err
	}
	p := req.Parser

	if !p.HasWord() {
		return nil, nsmserror.MissingField("hour", "remind.missing_hour")
	}
	hour, ok := p.NextHour()
	if !ok {
		value, _ := p.NextWord()
		return nil, nsmserror.InvalidField("hour", value, "remind.invalid_hour")
	}
	if hour > 23 {
		return nil, nsmserror.InvalidField("hour", strconv.Itoa(hour), "remind.invalid_hour")
	}
	if rest, ok := p.NextRest(); ok {
		return nil, nsmserror.TrailingContent(rest, "remind.trailing")
	}

	if err := h.store.SetReminderHour(ctx, req.Sender, hour); err != nil {
		return nil, err
	}

	return &Reply{
		Slug:    "remind.ok",
		Default: "We will remind you every day at {{.hour}}:00.",
		Vars:    map[string]interface{}{"hour": hour},
	}, nil
}
