package cloud

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jetsetgo/shopfloor-kiosk/internal/config"
	"github.com/jetsetgo/shopfloor-kiosk/internal/jobs"
)

// ErrNoScan is returned by Refresh before any work order has been scanned
var ErrNoScan = errors.New("no work order scanned")

// ErrScanChanged is returned by Refresh when the work order was rescanned or
// reset while the fetch was in flight. The fetched list is discarded.
var ErrScanChanged = errors.New("work order changed during refresh")

// JobSource fetches the authoritative open-jobs list
type JobSource interface {
	FetchOpenJobs(ctx context.Context, scan map[string]any) ([]jobs.Job, error)
}

// ScanSource provides the active scan context
type ScanSource interface {
	ScanContext() map[string]any
}

// Refresher reloads the open-jobs list from the spreadsheet on a schedule and
// on demand, replacing whatever the kiosk guessed in the meantime
type Refresher struct {
	config *config.RefreshConfig
	source JobSource
	scans  ScanSource
	store  *jobs.Store
	mu     sync.Mutex

	connected bool
	lastError error
	lastSeen  time.Time
	openJobs  int
	refreshes int

	cron    *cron.Cron
	entry   cron.EntryID
	trigger chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// OnRefreshed is called after each successful reload
	OnRefreshed func(count int)
}

// NewRefresher creates a new refresher
func NewRefresher(cfg *config.RefreshConfig, source JobSource, scans ScanSource, store *jobs.Store) *Refresher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Refresher{
		config:  cfg,
		source:  source,
		scans:   scans,
		store:   store,
		cron:    cron.New(),
		trigger: make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins the refresh loop and the schedule
func (r *Refresher) Start() error {
	if r.config.Enabled {
		id, err := r.cron.AddFunc(r.config.Schedule, r.Trigger)
		if err != nil {
			return fmt.Errorf("invalid refresh schedule %q: %w", r.config.Schedule, err)
		}
		r.entry = id
		r.cron.Start()
	}

	r.wg.Add(1)
	go r.loop()
	return nil
}

// Stop stops the schedule and waits for a running refresh to finish
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
	r.cancel()
	r.wg.Wait()
}

// Trigger requests a refresh. Requests made while one is pending coalesce.
func (r *Refresher) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Status returns the current connection status
func (r *Refresher) Status() ConnectionStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	errStr := ""
	if r.lastError != nil {
		errStr = r.lastError.Error()
	}

	status := ConnectionStatus{
		Connected: r.connected,
		LastError: errStr,
		LastSeen:  r.lastSeen,
		OpenJobs:  r.openJobs,
		Refreshes: r.refreshes,
	}
	if r.entry != 0 {
		status.NextRefresh = r.cron.Entry(r.entry).Next
	}
	return status
}

func (r *Refresher) loop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-r.trigger:
			err := r.Refresh(r.ctx)
			if err != nil && !errors.Is(err, ErrNoScan) && !errors.Is(err, ErrScanChanged) && r.ctx.Err() == nil {
				log.Printf("Open jobs refresh failed: %v", err)
			}
		}
	}
}

// Refresh fetches the open jobs of the scanned work order and replaces the cache
func (r *Refresher) Refresh(ctx context.Context) error {
	gen := r.store.Generation()
	scan := r.scans.ScanContext()
	if scan == nil {
		return ErrNoScan
	}

	list, err := r.source.FetchOpenJobs(ctx, scan)
	if err != nil {
		r.setError(err)
		return err
	}

	if !r.store.ReplaceIfCurrent(gen, list) {
		return ErrScanChanged
	}

	r.mu.Lock()
	r.connected = true
	r.lastError = nil
	r.lastSeen = time.Now()
	r.openJobs = len(list)
	r.refreshes++
	r.mu.Unlock()

	if r.OnRefreshed != nil {
		r.OnRefreshed(len(list))
	}
	return nil
}

func (r *Refresher) setError(err error) {
	r.mu.Lock()
	r.connected = false
	r.lastError = err
	r.mu.Unlock()
}
