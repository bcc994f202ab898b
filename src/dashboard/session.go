// Package dashboard holds the per-connection state of the ticker dashboard
// and the actions that change it.
package dashboard

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"ticker-desk/src/apiclient"
	"ticker-desk/src/interfaces"
	"ticker-desk/src/logger"
	"ticker-desk/src/models"
)

const (
	MsgTickerRequired = "Ticker is required"
	MsgLoadFailed     = "Failed to load tickers"
	MsgAddFailed      = "Failed to add ticker"
	MsgStartFailed    = "Failed to start job"
)

var MsgTickerTooLong = fmt.Sprintf("Ticker must be at most %d characters", models.MaxTickerLength)

// Notifier receives a fresh snapshot after every state change. It is called
// with the session lock held, in change order, and must not block.
type Notifier func(state models.MDashboardState)

// -----------------------------------------------------------------------------

// Session is the dashboard state of one connected page. Actions may run
// concurrently; every mutation is serialized by mu.
type Session struct {
	api    interfaces.IBackendAPI
	Logger *logger.Logger
	notify Notifier

	mu         sync.Mutex
	stocks     []models.MStock
	loading    int
	pending    bool
	triggering map[int64]bool
	errMsg     string
	info       string
	input      string
	version    uint64
	issuedSeq  uint64
	appliedSeq uint64
}

// -----------------------------------------------------------------------------

func NewSession(api interfaces.IBackendAPI, log *logger.Logger, notify Notifier) *Session {
	if notify == nil {
		notify = func(models.MDashboardState) {}
	}
	return &Session{
		api:        api,
		Logger:     log,
		notify:     notify,
		stocks:     []models.MStock{},
		triggering: make(map[int64]bool),
	}
}

// -----------------------------------------------------------------------------

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() models.MDashboardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() models.MDashboardState {
	triggering := make([]int64, 0, len(s.triggering))
	for id := range s.triggering {
		triggering = append(triggering, id)
	}
	slices.Sort(triggering)

	return models.MDashboardState{
		Type:       "STATE",
		Stocks:     slices.Clone(s.stocks),
		Loading:    s.loading > 0,
		Pending:    s.pending,
		Triggering: triggering,
		Error:      s.errMsg,
		Info:       s.info,
		Input:      s.input,
		Version:    s.version,
	}
}

// mutate applies fn under the lock and publishes the result.
func (s *Session) mutate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn()
	s.version++
	s.notify(s.snapshotLocked())
}

func (s *Session) setErrorLocked(msg string) {
	s.errMsg = msg
	s.info = ""
}

func (s *Session) setInfoLocked(msg string) {
	s.info = msg
	s.errMsg = ""
}

// -----------------------------------------------------------------------------

// Handle dispatches a command from the page.
func (s *Session) Handle(ctx context.Context, cmd models.MDashboardCommand) {
	switch cmd.Command {
	case models.CommandRefresh:
		s.LoadStocks(ctx)
	case models.CommandInput:
		s.SetInput(cmd.Ticker)
	case models.CommandSubmit:
		s.SubmitTicker(ctx, cmd.Ticker)
	case models.CommandStart:
		s.StartJob(ctx, cmd.ID)
	default:
		s.Logger.Warning("Ignoring unknown dashboard command %q", cmd.Command)
	}
}

// SetInput records the draft in the ticker field.
func (s *Session) SetInput(raw string) {
	s.mutate(func() { s.input = raw })
}

// -----------------------------------------------------------------------------

// LoadStocks fetches the list and replaces it on success. A response older
// than the last applied one is dropped.
func (s *Session) LoadStocks(ctx context.Context) {
	var seq uint64
	s.mutate(func() {
		s.issuedSeq++
		seq = s.issuedSeq
		s.loading++
		s.errMsg = ""
	})

	stocks, err := s.api.ListStocks(ctx)

	s.mutate(func() {
		s.loading--
		if seq < s.appliedSeq {
			s.Logger.Debug("Dropping stale stock list (seq %d < %d)", seq, s.appliedSeq)
			return
		}
		if err != nil {
			s.Logger.Warning("Loading stocks failed: %v", err)
			s.setErrorLocked(MsgLoadFailed)
			return
		}
		s.stocks = stocks
		s.appliedSeq = seq
	})
}

// -----------------------------------------------------------------------------

// SubmitTicker validates raw, adds it and reloads the list once.
func (s *Session) SubmitTicker(ctx context.Context, raw string) {
	ticker := strings.ToUpper(strings.TrimSpace(raw))

	accepted := false
	s.mutate(func() {
		s.input = raw
		switch {
		case ticker == "":
			s.setErrorLocked(MsgTickerRequired)
		case utf8.RuneCountInString(ticker) > models.MaxTickerLength:
			s.setErrorLocked(MsgTickerTooLong)
		case s.pending:
			s.Logger.Debug("Add already in flight, ignoring %q", raw)
		default:
			s.pending = true
			s.errMsg = ""
			s.info = ""
			accepted = true
		}
	})
	if !accepted {
		return
	}

	taskID, err := s.api.AddStock(ctx, ticker)
	if err != nil {
		s.Logger.Warning("Adding %s failed: %v", ticker, err)
		s.mutate(func() {
			s.pending = false
			s.setErrorLocked(apiclient.UserMessage(err, MsgAddFailed))
		})
		return
	}

	s.mutate(func() { s.input = "" })
	s.LoadStocks(ctx)

	s.mutate(func() {
		s.pending = false
		s.setInfoLocked(fmt.Sprintf("Ticker %s added and refresh scheduled (Task ID: %s)", ticker, taskID))
	})
}

// -----------------------------------------------------------------------------

// StartJob queues a refresh for stock id. Only that row is blocked while the
// request runs; the list is not reloaded.
func (s *Session) StartJob(ctx context.Context, id int64) {
	var ticker string
	accepted := false
	s.mutate(func() {
		if s.triggering[id] {
			return
		}
		s.triggering[id] = true
		s.errMsg = ""
		s.info = ""
		ticker = s.tickerLocked(id)
		accepted = true
	})
	if !accepted {
		return
	}

	err := s.api.StartJob(ctx, id)

	s.mutate(func() {
		delete(s.triggering, id)
		if err != nil {
			s.Logger.Warning("Starting job for #%d failed: %v", id, err)
			s.setErrorLocked(apiclient.UserMessage(err, MsgStartFailed))
			return
		}
		s.setInfoLocked("Refresh queued for " + ticker)
	})
}

func (s *Session) tickerLocked(id int64) string {
	for _, st := range s.stocks {
		if st.ID == id {
			return st.Ticker
		}
	}
	return fmt.Sprintf("#%d", id)
}
