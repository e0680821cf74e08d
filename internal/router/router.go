// Package router moves messages between backends and the command
// dispatcher. Every inbound text is logged, interpreted and answered
// through the backend it arrived on.
package router

import (
	"context"
	"sort"
	"strings"
	"sync"

	nsmserror "github.com/msto63/nsms/foundation/core/error"
	nsmslog "github.com/msto63/nsms/foundation/core/log"
	"github.com/msto63/nsms/foundation/utils/stringx"
	"github.com/msto63/nsms/internal/command"
	"github.com/msto63/nsms/internal/message"
)

// Result is the outcome of one inbound message.
type Result struct {
	Incoming *message.Message `json:"incoming"`
	Reply    *message.Message `json:"reply,omitempty"`
	Handler  string           `json:"handler,omitempty"`
	Keyword  string           `json:"keyword,omitempty"`
}

// Router owns the registered backends.
type Router struct {
	store      message.Store
	dispatcher *command.Dispatcher
	backends   map[string]Backend
	logger     *nsmslog.Logger
	mu         sync.RWMutex
}

// New creates a router logging to store and answering through dispatcher.
func New(store message.Store, dispatcher *command.Dispatcher, logger *nsmslog.Logger) *Router {
	if logger == nil {
		logger = nsmslog.GetDefault()
	}
	return &Router{
		store:      store,
		dispatcher: dispatcher,
		backends:   make(map[string]Backend),
		logger:     logger.WithField("component", "router"),
	}
}

// AddBackend registers b under its name.
func (r *Router) AddBackend(b Backend) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.backends[b.Name()]; exists {
		return nsmserror.New("backend already registered: " + b.Name()).
			WithCode(nsmserror.CodeDuplicateEntry).
			WithOperation("router.AddBackend")
	}
	r.backends[b.Name()] = b
	return nil
}

// Backend returns the backend registered as name.
func (r *Router) Backend(name string) (Backend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[name]
	return b, ok
}

// Backends returns the registered backend names in order.
func (r *Router) Backends() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Store returns the message log.
func (r *Router) Store() message.Store {
	return r.store
}

// HandleIncoming logs text from sender, dispatches it and sends the reply
// through the same backend. The incoming message ends as handled; the reply
// ends as sent or, when the backend refuses it, as error. A delivery failure
// is returned together with the result.
func (r *Router) HandleIncoming(ctx context.Context, backend, sender, text string) (*Result, error) {
	b, ok := r.Backend(backend)
	if !ok {
		return nil, nsmserror.New("unknown backend: " + backend).
			WithCode(nsmserror.CodeUnknownBackend).
			WithOperation("router.HandleIncoming").
			WithDetail("backend", backend)
	}
	if stringx.IsBlank(sender) {
		return nil, nsmserror.New("sender is required").
			WithCode(nsmserror.CodeInvalidInput).
			WithOperation("router.HandleIncoming")
	}

	sender = strings.TrimSpace(sender)
	in := message.NewIncoming(backend, sender, text)
	if err := r.store.Save(ctx, in); err != nil {
		return nil, err
	}
	logger := r.logger.WithMessageID(in.ID).WithBackend(backend).WithIdentity(sender)
	logger.Audit("sms received", nsmslog.Fields{"text": stringx.Truncate(stringx.SingleLine(text), 80, "...")})

	timer := logger.StartTimer("dispatch")
	res, err := r.dispatcher.Dispatch(ctx, command.Inbound{
		Text:      text,
		Sender:    sender,
		Backend:   backend,
		MessageID: in.ID,
	})
	if err != nil {
		timer.StopWithError(err)
		r.setStatus(ctx, logger, in, message.StatusError)
		return nil, err
	}
	timer.WithField("handler", res.Handler).Stop()
	r.setStatus(ctx, logger, in, message.StatusHandled)

	result := &Result{Incoming: in, Handler: res.Handler, Keyword: res.Keyword}
	if res.Reply == nil {
		return result, nil
	}

	reply := message.NewReply(in, res.Reply.String())
	if err := r.store.Save(ctx, reply); err != nil {
		return result, err
	}
	result.Reply = reply

	if err := b.Send(ctx, reply); err != nil {
		logger.WarnWithErr("reply not delivered", err)
		r.setStatus(ctx, logger, reply, message.StatusError)
		return result, nsmserror.Wrap(err, "reply not delivered").
			WithCode(nsmserror.CodeDeliveryFailed).
			WithOperation("router.HandleIncoming").
			WithDetail("backend", backend)
	}
	r.setStatus(ctx, logger, reply, message.StatusSent)

	logger.Audit("sms sent", nsmslog.Fields{
		"handler":  res.Handler,
		"reply_id": reply.ID,
		"text":     stringx.Truncate(stringx.SingleLine(reply.Text), 80, "..."),
	})
	return result, nil
}

// setStatus records status on msg. A failed update is only logged because
// the message itself is already stored.
func (r *Router) setStatus(ctx context.Context, logger *nsmslog.Logger, msg *message.Message, status message.Status) {
	if err := r.store.UpdateStatus(ctx, msg.ID, status); err != nil {
		logger.WarnWithErr("status update failed", err, nsmslog.Fields{"status": status.String()})
		return
	}
	msg.Status = status
}
