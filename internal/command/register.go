package command

import (
	"context"
	"time"

	nsmserror "github.com/msto63/nsms/foundation/core/error"
	"github.com/msto63/nsms/internal/registration"
)

// RegisterHandler handles "REG <first> <last> <birth date> [<phone>]".
// Without a phone the sender's number is registered.
type RegisterHandler struct {
	store *registration.Store
	now   func() time.Time
}

// NewRegisterHandler creates the registration handler.
func NewRegisterHandler(store *registration.Store) *RegisterHandler {
	return &RegisterHandler{store: store, now: time.Now}
}

func (h *RegisterHandler) Name() string       { return "register" }
func (h *RegisterHandler) Keywords() []string { return []string{"register", "reg"} }

func (h *RegisterHandler) Handle(ctx context.Context, req *Request) (*Reply, error) {
	p := req.Parser

	first, ok := p.NextWord()
	if !ok {
		return nil, nsmserror.MissingField("first_name", "register.missing_first_name")
	}
	vars := map[string]interface{}{"first_name": first}

	last, ok := p.NextWord()
	if !ok {
		return nil, nsmserror.MissingField("last_name", "register.missing_last_name").
			WithMessage("register.missing_last_name", vars)
	}
	vars["last_name"] = last

	if !p.HasWord() {
		return nil, nsmserror.MissingField("birth_date", "register.missing_birth_date").
			WithMessage("register.missing_birth_date", vars)
	}
	birth, ok := p.NextDate()
	if !ok {
		value, _ := p.NextWord()
		return nil, nsmserror.InvalidField("birth_date", value, "register.invalid_birth_date")
	}
	if birth.After(h.now()) {
		return nil, nsmserror.InvalidField("birth_date", birth.Format("02.01.2006"), "register.invalid_birth_date")
	}

	phone := req.Sender
	if p.HasWord() {
		if phone, ok = p.NextPhone(); !ok {
			value, _ := p.NextWord()
			return nil, nsmserror.InvalidField("phone", value, "register.invalid_phone")
		}
	}
	vars["phone"] = phone

	if rest, ok := p.NextRest(); ok {
		return nil, nsmserror.TrailingContent(rest, "register.trailing")
	}

	reg := &registration.Registration{
		Identity:  req.Sender,
		FirstName: first,
		LastName:  last,
		BirthDate: birth,
		Phone:     phone,
	}
	if err := h.store.Save(ctx, reg); err != nil {
		return nil, err
	}

	return &Reply{
		Slug:    "register.ok",
		Default: "Thank you {{.first_name}} {{.last_name}}, you are registered with number {{.phone}}.",
		Vars:    vars,
	}, nil
}
