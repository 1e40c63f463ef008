package flow

import (
	"context"
	"sync"
	"time"

	"roomdesk/internal/domain"
	"roomdesk/internal/models"

	"github.com/rs/zerolog"
)

// State of one booking dialog.
type State string

const (
	StateClosed      State = "closed"
	StateOpen        State = "open"
	StateQuoting     State = "quoting"
	StateQuoted      State = "quoted"
	StateQuoteError  State = "quote_error"
	StateSubmitting  State = "submitting"
	StateSuccess     State = "success"
	StateSubmitError State = "submit_error"
)

// Snapshot is what the chat layer renders after each transition.
type Snapshot struct {
	State        State
	Quote        *models.Quote
	Booking      *models.Booking
	ErrorMessage string
}

// Quoter drives one chat's booking dialog. Date edits debounce before
// hitting the pricing endpoint; each edit cancels the previous in-flight
// request and bumps a generation counter so a slow earlier response can
// never overwrite a newer quote.
type Quoter struct {
	backend  domain.Backend
	logger   *zerolog.Logger
	debounce time.Duration
	onUpdate func(Snapshot)

	mu       sync.Mutex
	state    State
	token    string
	request  models.BookingRequest
	quote    *models.Quote
	errMsg   string
	gen      uint64
	timer    *time.Timer
	inflight context.CancelFunc
}

func NewQuoter(backend domain.Backend, debounce time.Duration, logger *zerolog.Logger, onUpdate func(Snapshot)) *Quoter {
	return &Quoter{
		backend:  backend,
		logger:   logger,
		debounce: debounce,
		onUpdate: onUpdate,
		state:    StateClosed,
	}
}

// Open starts a dialog for the given room. Any previous dialog state is
// discarded.
func (q *Quoter) Open(roomID, token string) {
	q.mu.Lock()
	q.reset()
	q.state = StateOpen
	q.token = token
	q.request = models.BookingRequest{RoomID: roomID}
	snap := q.snapshot()
	q.mu.Unlock()

	q.notify(snap)
}

// SetGuests and SetRequests never trigger a re-quote; only dates price.
func (q *Quoter) SetGuests(guests int) {
	q.mu.Lock()
	q.request.Guests = guests
	q.mu.Unlock()
}

func (q *Quoter) SetRequests(text string) {
	q.mu.Lock()
	q.request.SpecialRequests = text
	q.mu.Unlock()
}

// SetDates records new dates and schedules a quote after the debounce
// window. An in-flight quote for older dates is cancelled immediately.
func (q *Quoter) SetDates(ctx context.Context, checkIn, checkOut time.Time) {
	q.mu.Lock()
	if q.state == StateClosed || q.state == StateSubmitting {
		q.mu.Unlock()
		return
	}

	q.request.CheckInDate = checkIn
	q.request.CheckOutDate = checkOut
	q.cancelPending()
	q.gen++
	gen := q.gen

	if checkIn.IsZero() || checkOut.IsZero() {
		q.state = StateOpen
		q.quote = nil
		q.errMsg = ""
		snap := q.snapshot()
		q.mu.Unlock()
		q.notify(snap)
		return
	}

	q.state = StateQuoting
	q.quote = nil
	q.errMsg = ""
	req := q.request
	token := q.token
	snap := q.snapshot()

	q.timer = time.AfterFunc(q.debounce, func() {
		q.fire(ctx, gen, token, req)
	})
	q.mu.Unlock()

	q.notify(snap)
}

func (q *Quoter) fire(parent context.Context, gen uint64, token string, req models.BookingRequest) {
	q.mu.Lock()
	if gen != q.gen || q.state != StateQuoting {
		q.mu.Unlock()
		return
	}
	// The update context that scheduled the timer is long gone by the
	// time the debounce fires; keep its values but not its cancellation.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), 15*time.Second)
	q.inflight = cancel
	q.mu.Unlock()

	quote, err := q.backend.CalculateQuote(ctx, token, req)

	q.mu.Lock()
	defer cancel()
	// A newer edit owns the dialog now; drop this response.
	if gen != q.gen || q.state != StateQuoting {
		q.mu.Unlock()
		return
	}
	q.inflight = nil
	if err != nil {
		q.state = StateQuoteError
		q.errMsg = err.Error()
		q.logger.Warn().Err(err).Str("room_id", req.RoomID).Msg("quote request failed")
	} else {
		q.state = StateQuoted
		q.quote = quote
	}
	snap := q.snapshot()
	q.mu.Unlock()

	q.notify(snap)
}

// Submit sends the booking. Allowed only once a quote is displayed; the
// dialog leaves the terminal state via Close.
func (q *Quoter) Submit(ctx context.Context) {
	q.mu.Lock()
	if q.state != StateQuoted {
		q.mu.Unlock()
		return
	}
	q.state = StateSubmitting
	req := q.request
	token := q.token
	gen := q.gen
	snap := q.snapshot()
	q.mu.Unlock()

	q.notify(snap)

	booking, err := q.backend.CreateBooking(ctx, token, req)

	q.mu.Lock()
	if gen != q.gen || q.state != StateSubmitting {
		q.mu.Unlock()
		return
	}
	if err != nil {
		q.state = StateSubmitError
		q.errMsg = err.Error()
	} else {
		q.state = StateSuccess
		snapBooking := *booking
		snap.Booking = &snapBooking
	}
	snap = q.snapshotWithBooking(snap.Booking)
	q.mu.Unlock()

	q.notify(snap)
}

// Retry returns a failed submission to the quoted state so the user can
// try again without re-entering dates.
func (q *Quoter) Retry() {
	q.mu.Lock()
	if q.state != StateSubmitError {
		q.mu.Unlock()
		return
	}
	q.state = StateQuoted
	q.errMsg = ""
	snap := q.snapshot()
	q.mu.Unlock()

	q.notify(snap)
}

// Close ends the dialog and cancels anything pending.
func (q *Quoter) Close() {
	q.mu.Lock()
	q.reset()
	snap := q.snapshot()
	q.mu.Unlock()

	q.notify(snap)
}

// Current returns the dialog state for routing decisions.
func (q *Quoter) Current() Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshot()
}

// Request returns a copy of the accumulated booking request.
func (q *Quoter) Request() models.BookingRequest {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.request
}

// reset must be called with q.mu held.
func (q *Quoter) reset() {
	q.cancelPending()
	q.gen++
	q.state = StateClosed
	q.token = ""
	q.request = models.BookingRequest{}
	q.quote = nil
	q.errMsg = ""
}

// cancelPending must be called with q.mu held.
func (q *Quoter) cancelPending() {
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	if q.inflight != nil {
		q.inflight()
		q.inflight = nil
	}
}

// snapshot must be called with q.mu held.
func (q *Quoter) snapshot() Snapshot {
	return Snapshot{State: q.state, Quote: q.quote, ErrorMessage: q.errMsg}
}

func (q *Quoter) snapshotWithBooking(b *models.Booking) Snapshot {
	s := q.snapshot()
	s.Booking = b
	return s
}

func (q *Quoter) notify(snap Snapshot) {
	if q.onUpdate != nil {
		q.onUpdate(snap)
	}
}
