package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	nsmserror "github.com/msto63/nsms/foundation/core/error"
	"github.com/msto63/nsms/internal/message"
	"github.com/msto63/nsms/internal/text"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// ReceiveResponse answers a carrier callback.
type ReceiveResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Handler     string `json:"handler,omitempty"`
	Reply       string `json:"reply,omitempty"`
	ReplyID     string `json:"reply_id,omitempty"`
	ReplyStatus string `json:"reply_status,omitempty"`
}

// MessagesResponse represents a page of the message log
type MessagesResponse struct {
	Messages []*message.Message `json:"messages"`
	Count    int                `json:"count"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

// StatusResponse reports messages stuck in the outbound pipeline.
type StatusResponse struct {
	message.StatusCounts
	OlderThan time.Time `json:"older_than"`
	Backends  []string  `json:"backends"`
}

// BackendsResponse lists the known backends.
type BackendsResponse struct {
	Registered []string `json:"registered"`
	Logged     []string `json:"logged"`
}

// TextsResponse lists stored reply texts.
type TextsResponse struct {
	Texts []*text.Text `json:"texts"`
	Count int          `json:"count"`
}

// TextUpdate is the body of PUT /api/v1/texts.
type TextUpdate struct {
	Slug   string `json:"slug"`
	Locale string `json:"locale,omitempty"`
	Text   string `json:"text"`
	User   string `json:"user,omitempty"`
}

// handleReceive accepts an inbound SMS as GET query or POST form.
func (s *Server) handleReceive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET or POST", "")
		return
	}

	backend := r.FormValue("backend")
	if backend == "" {
		backend = s.config.DefaultBackend
	}
	sender := r.FormValue("sender")
	text := r.FormValue("message")
	if sender == "" || text == "" {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "sender and message are required", "")
		return
	}

	res, err := s.router.HandleIncoming(r.Context(), backend, sender, text)
	if err != nil && res == nil {
		s.writeCodedError(w, err)
		return
	}

	resp := ReceiveResponse{
		ID:      res.Incoming.ID,
		Status:  res.Incoming.Status.String(),
		Handler: res.Handler,
	}
	if res.Reply != nil {
		resp.Reply = res.Reply.Text
		resp.ReplyID = res.Reply.ID
		resp.ReplyStatus = res.Reply.Status.String()
	}

	status := http.StatusOK
	if err != nil {
		status = nsmserror.GetCode(err).HTTPStatus()
		s.logger.LogError(err)
	}
	s.writeJSON(w, status, resp)
}

// handleMessages lists the message log, newest first.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid filter", err.Error())
		return
	}
	if filter.Limit == 0 {
		filter.Limit = defaultLimit
	}

	msgs, err := s.router.Store().Query(r.Context(), filter)
	if err != nil {
		s.writeCodedError(w, err)
		return
	}
	if msgs == nil {
		msgs = []*message.Message{}
	}

	s.writeJSON(w, http.StatusOK, MessagesResponse{
		Messages: msgs,
		Count:    len(msgs),
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
}

// handleMessagesCSV exports the filtered log without paging.
func (s *Server) handleMessagesCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid filter", err.Error())
		return
	}

	msgs, err := s.router.Store().Query(r.Context(), filter)
	if err != nil {
		s.writeCodedError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="messages.csv"`)
	if err := message.WriteCSV(w, msgs); err != nil {
		s.logger.Warn("CSV export aborted", "error", err)
	}
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid filter", err.Error())
		return
	}

	volumes, err := s.router.Store().Monthly(r.Context(), filter)
	if err != nil {
		s.writeCodedError(w, err)
		return
	}
	if volumes == nil {
		volumes = []message.MonthlyVolume{}
	}
	s.writeJSON(w, http.StatusOK, volumes)
}

// handleDaily returns per-day counts of one direction for the last days
// (default 30).
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}

	direction, err := parseDirection(r.URL.Query().Get("direction"))
	if err != nil || direction == "" {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "direction must be I or O", "")
		return
	}
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		if days, err = strconv.Atoi(v); err != nil || days < 1 {
			s.writeError(w, http.StatusBadRequest, "invalid_request", "days must be a positive number", v)
			return
		}
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	counts, err := s.router.Store().Daily(r.Context(), direction, since)
	if err != nil {
		s.writeCodedError(w, err)
		return
	}
	if counts == nil {
		counts = []message.DailyCount{}
	}
	s.writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}

	olderThan := time.Now().UTC().Add(-s.config.UnsentAfter)
	counts, err := s.router.Store().StatusCounts(r.Context(), olderThan)
	if err != nil {
		s.writeCodedError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, StatusResponse{
		StatusCounts: counts,
		OlderThan:    olderThan,
		Backends:     s.router.Backends(),
	})
}

func (s *Server) handleBackends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}

	logged, err := s.router.Store().Backends(r.Context())
	if err != nil {
		s.writeCodedError(w, err)
		return
	}
	if logged == nil {
		logged = []string{}
	}
	s.writeJSON(w, http.StatusOK, BackendsResponse{Registered: s.router.Backends(), Logged: logged})
}

// handleHealth answers 503 when any check is unhealthy.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}

	report := s.health.Check(r.Context())
	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, report)
}

// parseFilter reads backend, search, direction, since, limit and offset.
// since accepts RFC 3339 or a plain date.
func parseFilter(r *http.Request) (message.Filter, error) {
	q := r.URL.Query()
	filter := message.Filter{
		Backend: q.Get("backend"),
		Search:  q.Get("search"),
	}

	var err error
	if filter.Direction, err = parseDirection(q.Get("direction")); err != nil {
		return filter, err
	}
	if v := q.Get("since"); v != "" {
		if filter.Since, err = time.Parse(time.RFC3339, v); err != nil {
			if filter.Since, err = time.Parse("2006-01-02", v); err != nil {
				return filter, nsmserror.InvalidField("since", v, "")
			}
		}
	}
	if filter.Limit, err = parseCount(q.Get("limit"), "limit"); err != nil {
		return filter, err
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if filter.Offset, err = parseCount(q.Get("offset"), "offset"); err != nil {
		return filter, err
	}
	return filter, nil
}

func parseDirection(v string) (message.Direction, error) {
	switch strings.ToLower(v) {
	case "":
		return "", nil
	case "i", "in", "incoming":
		return message.Incoming, nil
	case "o", "out", "outgoing":
		return message.Outgoing, nil
	default:
		return "", nsmserror.InvalidField("direction", v, "")
	}
}

func parseCount(v, field string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, nsmserror.InvalidField(field, v, "")
	}
	return n, nil
}

// handleTexts lists reply texts (GET) or stores one (PUT, POST). Stored
// texts take effect at once because the serving catalog evicts its cache.
func (s *Server) handleTexts(w http.ResponseWriter, r *http.Request) {
	if s.texts == nil {
		s.writeError(w, http.StatusServiceUnavailable, "texts_unavailable", "Text editing is not enabled", "")
		return
	}

	switch r.Method {
	case http.MethodGet:
		texts, err := s.texts.List(r.Context(), r.URL.Query().Get("locale"))
		if err != nil {
			s.writeCodedError(w, err)
			return
		}
		if texts == nil {
			texts = []*text.Text{}
		}
		s.writeJSON(w, http.StatusOK, TextsResponse{Texts: texts, Count: len(texts)})

	case http.MethodPut, http.MethodPost:
		var upd TextUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body", err.Error())
			return
		}
		if strings.TrimSpace(upd.Slug) == "" || upd.Text == "" {
			s.writeError(w, http.StatusBadRequest, "invalid_request", "slug and text are required", "")
			return
		}
		if upd.Locale == "" {
			upd.Locale = s.texts.Bundles().DefaultLocale()
		}
		if upd.User == "" {
			upd.User = "api"
		}
		if err := s.texts.Set(r.Context(), upd.Slug, upd.Locale, upd.Text, upd.User); err != nil {
			s.writeCodedError(w, err)
			return
		}
		s.logger.Info("text updated", "slug", upd.Slug, "locale", upd.Locale, "user", upd.User)
		s.writeJSON(w, http.StatusOK, upd)

	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET, PUT or POST", "")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, msg, details string) {
	s.writeJSON(w, status, ErrorResponse{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// writeCodedError answers with the HTTP status of the error's code.
func (s *Server) writeCodedError(w http.ResponseWriter, err error) {
	code := nsmserror.GetCode(err)
	s.logger.LogError(err)
	s.writeError(w, code.HTTPStatus(), strings.ToLower(string(code)), err.Error(), "")
}
