package command

import (
	"context"
	"strconv"

	nsmserror "github.com/msto63/nsms/foundation/core/error"
	"github.com/msto63/nsms/internal/registration"
)

// ReportHandler handles "REP <count> <description...>" from registered
// senders.
type ReportHandler struct {
	store *registration.Store
}

// NewReportHandler creates the case report handler.
func NewReportHandler(store *registration.Store) *ReportHandler {
	return &ReportHandler{store: store}
}

func (h *ReportHandler) Name() string       { return "report" }
func (h *ReportHandler) Keywords() []string { return []string{"report", "rep"} }

func (h *ReportHandler) Handle(ctx context.Context, req *Request) (*Reply, error) {
	if err := requireRegistration(ctx, h.store, req.Sender, "report.not_registered"); err != nil {
		return nil, err
	}
	p := req.Parser

	if !p.HasWord() {
		return nil, nsmserror.MissingField("count", "report.missing_count")
	}
	digits, ok := p.NextInt()
	if !ok {
		value, _ := p.NextWord()
		return nil, nsmserror.InvalidField("count", value, "report.invalid_count")
	}
	count, err := strconv.Atoi(digits)
	if err != nil {
		return nil, nsmserror.InvalidField("count", digits, "report.invalid_count")
	}
	vars := map[string]interface{}{"count": count}

	description, ok := p.NextRest()
	if !ok {
		return nil, nsmserror.MissingField("description", "report.missing_description").
			WithMessage("report.missing_description", vars)
	}
	vars["description"] = description

	rep := &registration.Report{Identity: req.Sender, Count: count, Description: description}
	if err := h.store.AddReport(ctx, rep); err != nil {
		return nil, err
	}

	return &Reply{
		Slug:    "report.ok",
		Default: "Thank you, {{.count}} cases of {{.description}} recorded.",
		Vars:    vars,
	}, nil
}

// requireRegistration turns an unknown sender into a NOT_FOUND error
// carrying the reply key.
func requireRegistration(ctx context.Context, store *registration.Store, identity, key string) error {
	_, err := store.Get(ctx, identity)
	if nsmserror.HasCode(err, nsmserror.CodeNotFound) {
		return nsmserror.New("sender not registered").
			WithCode(nsmserror.CodeNotFound).
			WithDetail("identity", identity).
			WithMessage(key, nil)
	}
	return err
}
