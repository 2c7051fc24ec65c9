// Package http exposes the swap core to the widget over a JSON API.
package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-kit/log"

	swap "go-token-swap"
	"go-token-swap/exchange"
	"go-token-swap/observability"
	"go-token-swap/rates"
	"go-token-swap/session"
)

// Server dependencies for HTTP Server functions
type Server struct {
	source    *rates.Source
	convert   exchange.Service
	scheduler session.Scheduler
	sessions  *registry

	sessionConfig session.Config
	defaultAmount string

	metrics *observability.Metrics
	logger  log.Logger
	router  chi.Router
}

// Options to construct a Server
type Options struct {
	// Source the current rate table
	Source *rates.Source

	// Convert service for one-off conversions
	Convert exchange.Service

	// Scheduler passed to every session; tests inject a manual one
	Scheduler session.Scheduler

	// SessionConfig timing constants and slippage label for new sessions
	SessionConfig session.Config

	// DefaultAmount prefill for the amount text of new sessions
	DefaultAmount string

	Metrics *observability.Metrics
	Logger  log.Logger
}

// NewServer constructs a Server and mounts its routes.
func NewServer(opts Options) *Server {
	s := &Server{
		source:        opts.Source,
		convert:       opts.Convert,
		scheduler:     opts.Scheduler,
		sessions:      newRegistry(),
		sessionConfig: opts.SessionConfig,
		defaultAmount: opts.DefaultAmount,
		metrics:       opts.Metrics,
		logger:        opts.Logger,
		router:        chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/api/tokens", s.listTokens())
	s.router.Post("/api/convert", s.convertAmount())

	s.router.Post("/api/sessions", s.createSession())
	s.router.Get("/api/sessions/{id}", s.getSession())
	s.router.Put("/api/sessions/{id}/amount", s.setAmount())
	s.router.Put("/api/sessions/{id}/from", s.selectToken(true))
	s.router.Put("/api/sessions/{id}/to", s.selectToken(false))
	s.router.Post("/api/sessions/{id}/invert", s.invert())
	s.router.Post("/api/sessions/{id}/submit", s.submit())
	s.router.Post("/api/sessions/{id}/dismiss", s.dismiss())
	s.router.Delete("/api/sessions/{id}", s.deleteSession())

	s.router.Method("GET", "/metrics", observability.Handler())
}

func (s *Server) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(rw, r)
}

// tokenResponse for marshalling tokens to the widget
type tokenResponse struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Icon   string  `json:"icon"`
}

func toTokenResponse(t swap.Token) tokenResponse {
	return tokenResponse{
		Symbol: string(t.Symbol),
		Name:   t.Name,
		Price:  float64(t.Price),
		Icon:   swap.IconPath(t.Symbol),
	}
}

// sessionResponse for marshalling a session snapshot
type sessionResponse struct {
	ID         string         `json:"id"`
	From       *tokenResponse `json:"from"`
	To         *tokenResponse `json:"to"`
	FromAmount string         `json:"fromAmount"`
	ToAmount   *float64       `json:"toAmount"`
	State      string         `json:"state"`
	Rate       float64        `json:"rate"`
	Slippage   string         `json:"slippage"`
	Error      string         `json:"error,omitempty"`
	Success    string         `json:"success,omitempty"`
}

func toSessionResponse(id string, snapshot session.Snapshot) sessionResponse {
	response := sessionResponse{
		ID:         id,
		FromAmount: snapshot.FromAmountText,
		State:      string(snapshot.State),
		Rate:       float64(snapshot.UnitRate),
		Slippage:   snapshot.Slippage,
		Error:      snapshot.ErrorMessage,
		Success:    snapshot.SuccessMessage,
	}
	if snapshot.From != nil {
		from := toTokenResponse(*snapshot.From)
		response.From = &from
	}
	if snapshot.To != nil {
		to := toTokenResponse(*snapshot.To)
		response.To = &to
	}
	if snapshot.ToAmount != nil {
		out := float64(*snapshot.ToAmount)
		response.ToAmount = &out
	}
	return response
}

// listTokens serves the tradable token list, optionally filtered by the q
// query parameter. While no table has loaded, the widget gets a blocking
// error state, never a partial list.
func (s *Server) listTokens() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		table, ok := s.source.Table()
		if !ok {
			s.writeLoadFailure(rw)
			return
		}

		tokens := rates.Filter(table.Tokens(), r.URL.Query().Get("q"))
		response := make([]tokenResponse, 0, len(tokens))
		for _, t := range tokens {
			response = append(response, toTokenResponse(t))
		}
		s.writeJSON(rw, http.StatusOK, response)
	}
}

// convertAmount produces an HTTP handler for one-off conversions
func (s *Server) convertAmount() http.HandlerFunc {

	// request for unmarshalling JSON requests posted by clients
	type request struct {
		FromSymbol swap.Symbol `json:"fromSymbol"`
		ToSymbol   swap.Symbol `json:"toSymbol"`
		Amount     swap.Amount `json:"amount"`
	}

	// response for marshalling JSON responses to return to clients
	type response struct {
		Exchange swap.Rate   `json:"exchange"`
		Amount   swap.Amount `json:"amount"`
		Original swap.Amount `json:"original"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		bytes, err := io.ReadAll(r.Body)
		if err != nil {
			s.writeError(rw, http.StatusBadRequest, "invalid request")
			return
		}

		var request request
		err = json.Unmarshal(bytes, &request)
		if err != nil {
			s.writeError(rw, http.StatusBadRequest, "invalid json")
			return
		}

		result, err := s.convert.Convert(r.Context(), request.Amount, request.FromSymbol, request.ToSymbol)
		if err != nil {
			s.writeError(rw, http.StatusBadRequest, "failed conversion")
			return
		}
		s.metrics.ConversionsTotal.Inc()

		s.writeJSON(rw, http.StatusOK, response{
			Exchange: result.Rate,
			Amount:   result.Amount,
			Original: request.Amount,
		})
	}
}

// createSession mounts a new session seeded with the configured defaults.
func (s *Server) createSession() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		table, ok := s.source.Table()
		if !ok {
			s.writeLoadFailure(rw)
			return
		}

		opts := session.Options{AmountText: s.defaultAmount}
		if from, ok := table.DefaultFrom(); ok {
			opts.From = &from
		}
		if to, ok := table.DefaultTo(); ok {
			opts.To = &to
		}

		sess := session.New(s.sessionConfig, s.source, s.scheduler, s.logger, opts)
		id := s.sessions.add(sess)
		s.metrics.SessionsCreated.Inc()

		s.writeJSON(rw, http.StatusCreated, toSessionResponse(id, sess.Snapshot()))
	}
}

func (s *Server) getSession() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		id, sess, ok := s.lookup(rw, r)
		if !ok {
			return
		}
		s.writeJSON(rw, http.StatusOK, toSessionResponse(id, sess.Snapshot()))
	}
}

// setAmount applies an amount edit. Rejected edits keep the previous text.
func (s *Server) setAmount() http.HandlerFunc {
	type request struct {
		Amount string `json:"amount"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		id, sess, ok := s.lookup(rw, r)
		if !ok {
			return
		}

		var request request
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			s.writeError(rw, http.StatusBadRequest, "invalid json")
			return
		}

		if !sess.SetAmount(request.Amount) {
			s.writeError(rw, http.StatusUnprocessableEntity, "invalid amount")
			return
		}
		s.writeJSON(rw, http.StatusOK, toSessionResponse(id, sess.Snapshot()))
	}
}

// selectToken commits a token selection on one side of the swap.
func (s *Server) selectToken(fromSide bool) http.HandlerFunc {
	type request struct {
		Symbol swap.Symbol `json:"symbol"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		id, sess, ok := s.lookup(rw, r)
		if !ok {
			return
		}

		var request request
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			s.writeError(rw, http.StatusBadRequest, "invalid json")
			return
		}

		table, ok := s.source.Table()
		if !ok {
			s.writeLoadFailure(rw)
			return
		}
		token, ok := table.Lookup(request.Symbol)
		if !ok {
			s.writeError(rw, http.StatusNotFound, "unknown symbol")
			return
		}

		if fromSide {
			sess.SelectFrom(token)
		} else {
			sess.SelectTo(token)
		}
		s.writeJSON(rw, http.StatusOK, toSessionResponse(id, sess.Snapshot()))
	}
}

func (s *Server) invert() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		id, sess, ok := s.lookup(rw, r)
		if !ok {
			return
		}
		sess.Invert()
		s.writeJSON(rw, http.StatusOK, toSessionResponse(id, sess.Snapshot()))
	}
}

func (s *Server) submit() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		id, sess, ok := s.lookup(rw, r)
		if !ok {
			return
		}
		if sess.Submit() {
			s.metrics.SwapsSubmitted.Inc()
		} else {
			s.metrics.SwapsRejected.Inc()
		}
		s.writeJSON(rw, http.StatusOK, toSessionResponse(id, sess.Snapshot()))
	}
}

func (s *Server) dismiss() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		id, sess, ok := s.lookup(rw, r)
		if !ok {
			return
		}
		sess.DismissSuccess()
		s.writeJSON(rw, http.StatusOK, toSessionResponse(id, sess.Snapshot()))
	}
}

func (s *Server) deleteSession() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !s.sessions.remove(id) {
			s.writeError(rw, http.StatusNotFound, "unknown session")
			return
		}
		s.metrics.SessionsClosed.Inc()
		rw.WriteHeader(http.StatusNoContent)
	}
}

// lookup resolves the session handle in the request path.
func (s *Server) lookup(rw http.ResponseWriter, r *http.Request) (string, *session.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, ok := s.sessions.get(id)
	if !ok {
		s.writeError(rw, http.StatusNotFound, "unknown session")
		return "", nil, false
	}
	return id, sess, true
}

// writeLoadFailure surfaces the feed failure verbatim as a blocking error.
func (s *Server) writeLoadFailure(rw http.ResponseWriter) {
	message := "failed to load tokens"
	if err := s.source.LoadError(); err != nil {
		message = err.Error()
	}
	s.writeError(rw, http.StatusServiceUnavailable, message)
}

func (s *Server) writeJSON(rw http.ResponseWriter, status int, body interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	err := json.NewEncoder(rw).Encode(body)
	if err != nil {
		s.logger.Log("msg", "failed json encoding", "err", err)
	}
}

func (s *Server) writeError(rw http.ResponseWriter, status int, message string) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(map[string]string{"error": message})
}
