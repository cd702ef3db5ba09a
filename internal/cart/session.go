package cart

import (
	"context"
	"sync"
	"time"

	"hospitality_pos/internal/billing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Customer struct {
	Name            string  `json:"customer_name"`
	Mobile          string  `json:"customer_mobile"`
	DiscountPercent float64 `json:"discount_percent"`
}

// Draft is what a session persists as the table's running order.
type Draft struct {
	TableID  uint
	Lines    []Line
	Customer Customer
	// Version is the last version this session saw; the store rejects the
	// write if someone else has saved since.
	Version int64
}

// DraftSaver persists a draft and returns its new version.
type DraftSaver interface {
	SaveDraft(ctx context.Context, d Draft) (int64, error)
}

// ResumeSource records where an opened session got its contents from.
type ResumeSource string

const (
	FromRunningOrder ResumeSource = "running_order"
	FromOrder        ResumeSource = "order"
	FromEmpty        ResumeSource = "empty"
)

// Session is one order-entry session on a table. The cart is the source of
// truth while the session is open; the draft store only mirrors it.
type Session struct {
	ID       string
	TableID  uint
	OpenedAt time.Time

	mu       sync.Mutex
	cart     *Cart
	customer Customer
	version  int64
	source   ResumeSource

	saveMu      sync.Mutex
	saver       DraftSaver
	autosave    *Autosaver
	saveTimeout time.Duration
	logger      *zap.Logger
}

func NewSession(tableID uint, saver DraftSaver, delay time.Duration, logger *zap.Logger) *Session {
	s := &Session{
		ID:          uuid.NewString(),
		TableID:     tableID,
		OpenedAt:    time.Now(),
		cart:        New(),
		source:      FromEmpty,
		saver:       saver,
		saveTimeout: 5 * time.Second,
		logger:      logger.With(zap.Uint("table_id", tableID)),
	}
	s.autosave = NewAutosaver(delay, s.save)
	return s
}

// Resume loads contents without scheduling a save.
func (s *Session) Resume(d Draft, source ResumeSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Restore(d.Lines)
	s.customer = d.Customer
	s.version = d.Version
	s.source = source
}

func (s *Session) edit(fn func(c *Cart) error) error {
	s.mu.Lock()
	err := fn(s.cart)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.autosave.Touch()
	return nil
}

func (s *Session) AddItem(item Item) (Line, error) {
	var line Line
	err := s.edit(func(c *Cart) error {
		var err error
		line, err = c.AddItem(item)
		return err
	})
	return line, err
}

func (s *Session) AddVariant(item Item, measurement string) (Line, error) {
	var line Line
	err := s.edit(func(c *Cart) error {
		var err error
		line, err = c.AddVariant(item, measurement)
		return err
	})
	return line, err
}

func (s *Session) Increment(key string) error {
	return s.edit(func(c *Cart) error { return c.Increment(key) })
}

func (s *Session) Decrement(key string) error {
	return s.edit(func(c *Cart) error { return c.Decrement(key) })
}

func (s *Session) Remove(key string) error {
	return s.edit(func(c *Cart) error { return c.Remove(key) })
}

func (s *Session) SetCustomer(cust Customer) {
	s.edit(func(*Cart) error {
		s.customer = cust
		return nil
	})
}

func (s *Session) Customer() Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customer
}

func (s *Session) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Lines()
}

func (s *Session) Subtotal() billing.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Subtotal()
}

func (s *Session) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.IsEmpty()
}

func (s *Session) Version() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Session) Source() ResumeSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Snapshot returns the session as a draft.
func (s *Session) Snapshot() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Draft{
		TableID:  s.TableID,
		Lines:    s.cart.Lines(),
		Customer: s.customer,
		Version:  s.version,
	}
}

// Clear empties the cart after a successful submission and stops autosaving;
// the session is expected to be closed next.
func (s *Session) Clear() {
	s.autosave.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = New()
	s.customer = Customer{}
}

// Flush saves pending edits now instead of waiting for the debounce.
func (s *Session) Flush() bool {
	return s.autosave.Flush()
}

// Close stops autosaving. Pending edits are flushed first unless discard is set.
func (s *Session) Close(discard bool) {
	if !discard {
		s.autosave.Flush()
	}
	s.autosave.Stop()
}

// save is fire-and-forget: a failed write is logged and the local cart stays
// authoritative. There is no retry.
func (s *Session) save() {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	d := s.Snapshot()
	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()

	version, err := s.saver.SaveDraft(ctx, d)
	if err != nil {
		s.logger.Warn("running order autosave failed",
			zap.Int64("version", d.Version),
			zap.Int("lines", len(d.Lines)),
			zap.Error(err))
		return
	}

	// The store's version wins; it drops back to 1 when the draft was
	// recreated after a delete.
	s.mu.Lock()
	s.version = version
	s.mu.Unlock()
	s.logger.Debug("running order saved", zap.Int64("version", version))
}

// Manager keeps at most one open session per table.
type Manager struct {
	mu       sync.Mutex
	sessions map[uint]*Session

	saver  DraftSaver
	delay  time.Duration
	logger *zap.Logger
}

func NewManager(saver DraftSaver, delay time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		sessions: make(map[uint]*Session),
		saver:    saver,
		delay:    delay,
		logger:   logger,
	}
}

// ResumeFunc loads the contents a newly opened session should start with.
type ResumeFunc func() (Draft, ResumeSource, error)

// Open returns the table's session, creating and resuming it when there is
// none. The bool reports whether a new session was created.
func (m *Manager) Open(tableID uint, resume ResumeFunc) (*Session, bool, error) {
	if s, ok := m.Get(tableID); ok {
		return s, false, nil
	}

	d, source, err := resume()
	if err != nil {
		return nil, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[tableID]; ok {
		return s, false, nil
	}
	s := NewSession(tableID, m.saver, m.delay, m.logger)
	s.Resume(d, source)
	m.sessions[tableID] = s
	return s, true, nil
}

func (m *Manager) Get(tableID uint) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[tableID]
	return s, ok
}

// Close ends the table's session. It reports whether one was open.
func (m *Manager) Close(tableID uint, discard bool) bool {
	m.mu.Lock()
	s, ok := m.sessions[tableID]
	delete(m.sessions, tableID)
	m.mu.Unlock()
	if ok {
		s.Close(discard)
	}
	return ok
}

// CloseAll flushes and closes every session; used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[uint]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close(false)
	}
}
