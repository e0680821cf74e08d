// Package command turns inbound SMS text into replies. A Dispatcher owns the
// keyword table; each Handler consumes the fields of its command from the
// tokenizer and answers with a localized reply.
package command

import (
	"context"
	"fmt"
	"strings"
	"sync"

	nsmserror "github.com/msto63/nsms/foundation/core/error"
	nsmslog "github.com/msto63/nsms/foundation/core/log"
	"github.com/msto63/nsms/foundation/sms/parser"
	"github.com/msto63/nsms/internal/text"
)

// UnknownSlug is the reply slug for messages no handler accepts.
const UnknownSlug = "unknown"

// Request is one inbound message positioned after its keyword.
type Request struct {
	Parser    *parser.Parser
	Keyword   string
	Text      string
	Sender    string
	Backend   string
	MessageID string
}

// Reply names the text to send back. Default is used when neither the text
// store nor the bundles know Slug.
type Reply struct {
	Slug    string
	Default string
	Vars    map[string]interface{}
}

// Handler processes one command.
type Handler interface {
	Name() string
	Keywords() []string
	Handle(ctx context.Context, req *Request) (*Reply, error)
}

// Inbound is a message as received from a backend.
type Inbound struct {
	Text      string
	Sender    string
	Backend   string
	MessageID string
}

// Result is the outcome of dispatching one message.
type Result struct {
	Handler string
	Keyword string
	Reply   *text.LazyText
	// FieldError is set when the reply explains a rejected field.
	FieldError error
}

// Options configures a Dispatcher.
type Options struct {
	Logger        *nsmslog.Logger
	Separators    []rune
	ReferenceYear int
}

// Dispatcher routes messages to handlers by their leading keyword.
// Handlers are tried in registration order.
type Dispatcher struct {
	catalog  *text.Catalog
	handlers []Handler
	keywords map[string]string
	logger   *nsmslog.Logger
	options  Options
	mu       sync.RWMutex
}

// NewDispatcher creates a dispatcher replying through catalog.
func NewDispatcher(catalog *text.Catalog, opts Options) *Dispatcher {
	if opts.Logger == nil {
		opts.Logger = nsmslog.GetDefault()
	}
	return &Dispatcher{
		catalog:  catalog,
		keywords: make(map[string]string),
		logger:   opts.Logger.WithField("component", "dispatcher"),
		options:  opts,
	}
}

// Register adds a handler. A keyword already taken by another handler is
// rejected.
func (d *Dispatcher) Register(h Handler) error {
	if h == nil || len(h.Keywords()) == 0 {
		return nsmserror.New("handler needs at least one keyword").
			WithCode(nsmserror.CodeValidationFailed).
			WithOperation("command.Register")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, kw := range h.Keywords() {
		if owner, exists := d.keywords[strings.ToLower(kw)]; exists {
			return nsmserror.New(fmt.Sprintf("keyword %s already registered by %s", kw, owner)).
				WithCode(nsmserror.CodeDuplicateEntry).
				WithOperation("command.Register")
		}
	}
	for _, kw := range h.Keywords() {
		d.keywords[strings.ToLower(kw)] = h.Name()
	}
	d.handlers = append(d.handlers, h)

	d.logger.Debug("handler registered", nsmslog.Fields{
		"handler":  h.Name(),
		"keywords": strings.Join(h.Keywords(), ","),
	})
	return nil
}

// MustRegister registers handlers and panics on a keyword clash.
func (d *Dispatcher) MustRegister(handlers ...Handler) *Dispatcher {
	for _, h := range handlers {
		if err := d.Register(h); err != nil {
			panic(err)
		}
	}
	return d
}

// Keywords returns the primary keyword of every handler in registration
// order, upper-cased as senders are told to type them.
func (d *Dispatcher) Keywords() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]string, 0, len(d.handlers))
	for _, h := range d.handlers {
		out = append(out, strings.ToUpper(h.Keywords()[0]))
	}
	return out
}

// NewParser tokenizes text with the configured separators.
func (d *Dispatcher) NewParser(text string) *parser.Parser {
	p := parser.New(text, d.options.Separators...)
	if d.options.ReferenceYear > 0 {
		p.WithReferenceYear(d.options.ReferenceYear)
	}
	return p
}

// Dispatch finds the handler for in and returns its reply. Field errors
// carrying a reply key become replies; any other error is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, in Inbound) (*Result, error) {
	p := d.NewParser(in.Text)
	logger := d.logger.WithMessageID(in.MessageID).WithBackend(in.Backend).WithIdentity(in.Sender)

	d.mu.RLock()
	handlers := d.handlers
	d.mu.RUnlock()

	for _, h := range handlers {
		keyword, ok := p.NextKeyword(h.Keywords())
		if !ok {
			continue
		}

		req := &Request{
			Parser:    p,
			Keyword:   keyword,
			Text:      in.Text,
			Sender:    in.Sender,
			Backend:   in.Backend,
			MessageID: in.MessageID,
		}
		result := &Result{Handler: h.Name(), Keyword: keyword}

		reply, err := h.Handle(ctx, req)
		if err != nil {
			if !isReplyError(err) {
				logger.WithField("handler", h.Name()).LogError(err)
				return nil, err
			}
			logger.Info("command rejected", nsmslog.Fields{
				"handler": h.Name(),
				"code":    string(nsmserror.GetCode(err)),
				"reply":   nsmserror.MessageKeyOf(err),
			})
			result.FieldError = err
			reply = &Reply{
				Slug:    nsmserror.MessageKeyOf(err),
				Default: err.Error(),
				Vars:    nsmserror.MessageArgsOf(err),
			}
		} else {
			logger.Info("command handled", nsmslog.Fields{"handler": h.Name()})
		}

		if reply != nil {
			if result.Reply, err = d.render(ctx, reply); err != nil {
				return nil, err
			}
		}
		return result, nil
	}

	logger.Info("unknown keyword", nsmslog.Fields{"text": in.Text})
	lazy, err := d.render(ctx, &Reply{Slug: UnknownSlug, Default: "Unknown command."})
	if err != nil {
		return nil, err
	}
	return &Result{Reply: lazy}, nil
}

func (d *Dispatcher) render(ctx context.Context, r *Reply) (*text.LazyText, error) {
	return d.catalog.Get(ctx, r.Slug, r.Default, r.Vars)
}

// isReplyError reports whether err should be answered with its reply key
// instead of failing the message.
func isReplyError(err error) bool {
	if nsmserror.MessageKeyOf(err) == "" {
		return false
	}
	code := nsmserror.GetCode(err)
	return code.IsUserFacing() || code == nsmserror.CodeNotFound
}
