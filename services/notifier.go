package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"renovapro-backend/utils"

	"github.com/robfig/cron/v3"
)

const (
	StateIdle     = "idle"
	StateRunning  = "running"
	StateStopping = "stopping"
)

// DefaultPollSpec is how often the running scheduler re-checks for due
// notices.
const DefaultPollSpec = "@every 5m"

var (
	ErrAlreadyRunning        = errors.New("notification scheduler already running")
	ErrTransportNotConnected = errors.New("chat transport is not connected")
)

// Notifier drives the renewal-reminder loop: poll, select due notices,
// render, deliver, mark sent. A single background worker does all automated
// sends; manual triggers share the same single-flight entry point.
type Notifier struct {
	store     RecordStore
	transport Transport
	governor  *Governor
	deliverer *Deliverer
	polisher  *Polisher // optional
	fileLog   *utils.FileLog

	pollSpec string

	mu     sync.Mutex
	state  string
	cron   *cron.Cron
	stopCh chan struct{}
	wg     sync.WaitGroup

	processing atomic.Bool
}

func NewNotifier(store RecordStore, transport Transport, governor *Governor, deliverer *Deliverer, polisher *Polisher, fileLog *utils.FileLog) *Notifier {
	return &Notifier{
		store:     store,
		transport: transport,
		governor:  governor,
		deliverer: deliverer,
		polisher:  polisher,
		fileLog:   fileLog,
		pollSpec:  DefaultPollSpec,
		state:     StateIdle,
	}
}

func (n *Notifier) State() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

func (n *Notifier) IsRunning() bool {
	return n.State() == StateRunning
}

// Start moves the scheduler from Idle to Running. It refuses to start while
// the transport is disconnected.
func (n *Notifier) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state != StateIdle {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if !n.transport.Status(ctx).Connected {
		return ErrTransportNotConnected
	}

	n.stopCh = make(chan struct{})
	n.cron = cron.New()
	if _, err := n.cron.AddFunc(n.pollSpec, func() { n.ProcessDueNotices() }); err != nil {
		return err
	}
	n.cron.Start()
	n.state = StateRunning

	// First pass right away, like every later poll. Tracked so Stop waits
	// for it the same way it waits for cron runs.
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.ProcessDueNotices()
	}()

	log.Println("Notification scheduler started")
	return nil
}

// Stop interrupts the poll loop. An attempt already handed to the transport
// finishes its outcome write; the loop exits between notices.
func (n *Notifier) Stop() error {
	n.mu.Lock()
	if n.state != StateRunning {
		n.mu.Unlock()
		return nil
	}
	n.state = StateStopping
	close(n.stopCh)
	c := n.cron
	n.mu.Unlock()

	stopCtx := c.Stop()
	done := make(chan struct{})
	go func() {
		<-stopCtx.Done()
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Println("Notification scheduler stop timed out waiting for running jobs")
	}

	n.mu.Lock()
	n.state = StateIdle
	n.cron = nil
	// Leave no closed channel behind: a manual pass while Idle must not
	// read it as a stop signal.
	n.stopCh = nil
	n.mu.Unlock()

	log.Println("Notification scheduler stopped")
	return nil
}

// ProcessDueNotices runs one notification pass. Reentry while a pass is in
// flight is a no-op, which serializes the background loop and manual
// triggers. Safe to call while Idle (manual processing).
func (n *Notifier) ProcessDueNotices() {
	if !n.processing.CompareAndSwap(false, true) {
		return
	}
	defer n.processing.Store(false)

	ctx := context.Background()
	if !n.transport.Status(ctx).Connected {
		log.Println("notifier: transport not connected, skipping cycle")
		return
	}

	now := time.Now()
	if !n.governor.MayConnectNow(now) {
		return
	}

	customers, err := n.store.ListActiveCustomers()
	if err != nil {
		log.Printf("notifier: failed to list customers: %v", err)
		return
	}

	notices := SelectDue(utils.BeginningOfDay(now), now, customers)
	if len(notices) == 0 {
		return
	}

	n.mu.Lock()
	stopCh := n.stopCh
	n.mu.Unlock()

	interval := n.governor.MessageInterval()

	for i, notice := range notices {
		if stopped(stopCh) {
			return
		}
		// Disconnection mid-run aborts the rest of the cycle; the next
		// poll retries.
		if !n.transport.Status(ctx).Connected {
			log.Println("notifier: transport dropped mid-cycle, aborting remaining queue")
			return
		}
		if !n.governor.MayConnectNow(time.Now()) {
			return
		}

		n.processNotice(ctx, notice)

		if i < len(notices)-1 {
			select {
			case <-time.After(interval):
			case <-stopCh:
				return
			}
		}
	}
}

// processNotice handles one customer. Any failure, including a panic, is
// contained here so the batch continues.
func (n *Notifier) processNotice(ctx context.Context, notice DueNotice) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("notifier: panic processing customer %s: %v", notice.Customer.ID, r)
		}
	}()

	customer := notice.Customer

	tpl, err := ResolveTemplate(n.store, &customer, TemplateKindForNotice(notice.Kind))
	if err != nil {
		log.Printf("notifier: no template for customer %s (%s/%s), notice dropped",
			customer.ID, customer.ProductType, notice.Kind)
		n.fileLog.Append("no template for customer %s (%s), notice dropped", customer.Name, customer.ProductType)
		return
	}

	body := Render(tpl.Body, VarsForCustomer(&customer, notice.DaysRemaining))
	if n.polisher != nil {
		body = n.polisher.Polish(ctx, body)
	}

	outcome := n.deliverer.Deliver(ctx, &customer, body, notice.Kind)
	if outcome.Sent() {
		if err := n.store.UpdateLastSent(customer.ID, time.Now()); err != nil {
			log.Printf("notifier: failed to mark customer %s as sent: %v", customer.ID, err)
		}
	}
}

func stopped(ch <-chan struct{}) bool {
	if ch == nil {
		return false
	}
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// PendingNotices is the read-only view of what the next pass would send,
// used by the operator API.
func (n *Notifier) PendingNotices(now time.Time) ([]DueNotice, error) {
	customers, err := n.store.ListActiveCustomers()
	if err != nil {
		return nil, err
	}
	return SelectDue(utils.BeginningOfDay(now), now, customers), nil
}
