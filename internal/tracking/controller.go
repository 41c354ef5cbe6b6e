package tracking

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/labstack/gommon/log"

	"github.com/lachlan2k/shiptrack/internal/accesscontrol"
	"github.com/lachlan2k/shiptrack/internal/api"
	"github.com/lachlan2k/shiptrack/internal/logging"
	"github.com/lachlan2k/shiptrack/internal/models"
	"github.com/lachlan2k/shiptrack/internal/session"
	"github.com/lachlan2k/shiptrack/internal/ui"
)

const (
	MsgPermissionDenied = "Your role is not allowed to use tracking."
	MsgInvalidValue     = "Please enter a valid search value."
	MsgSearchFailed     = "Search failed."
)

// Searcher is the one remote call the controller needs.
type Searcher interface {
	SearchShipments(ctx context.Context, searchType models.SearchType, value string) (*models.Shipment, error)
}

// State of the controller. Idle before the first search and after Reset,
// Searching while a lookup is in flight, otherwise the kind of the last result.
type State string

const (
	StateIdle      State = "idle"
	StateSearching State = "searching"
)

// Kind is the outcome of one search. Exactly one per call.
type Kind string

const (
	KindFound            Kind = "found"
	KindNotFound         Kind = "not_found"
	KindValidationError  Kind = "validation_error"
	KindPermissionDenied Kind = "permission_denied"
	KindServiceError     Kind = "service_error"
)

type Result struct {
	Kind    Kind
	Message string
	// Set only for KindFound
	Shipment *models.Shipment
	// Set only for KindServiceError
	Err error
	// Stale results lost the race to a newer search and were not shown.
	Stale bool
}

type Controller struct {
	remote Searcher
	view   ui.Presenter
	logger *log.Logger

	mu       sync.Mutex
	latest   uint64
	inFlight int
	state    State
	shown    *models.Shipment
}

func NewController(remote Searcher, view ui.Presenter, logger *log.Logger) *Controller {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Controller{
		remote: remote,
		view:   view,
		logger: logger,
		state:  StateIdle,
	}
}

// Search checks permission and input locally, and only then asks the service.
// Denied or empty searches never touch the network.
func (c *Controller) Search(ctx context.Context, p session.Principal, searchType models.SearchType, rawValue string) Result {
	if !accesscontrol.CanTrack(p) {
		return c.finish(c.begin(false), false, Result{Kind: KindPermissionDenied, Message: MsgPermissionDenied})
	}

	value := strings.TrimSpace(rawValue)
	if value == "" {
		return c.finish(c.begin(false), false, Result{Kind: KindValidationError, Message: MsgInvalidValue})
	}

	seq := c.begin(true)
	c.logger.Debugf("search #%d: %s=%q", seq, searchType, value)

	shipment, err := c.remote.SearchShipments(ctx, searchType, value)

	var res Result
	switch {
	case err != nil:
		res = Result{Kind: KindServiceError, Message: api.UserMessage(err, MsgSearchFailed), Err: err}
	case shipment == nil:
		res = Result{Kind: KindNotFound, Message: fmt.Sprintf("No shipment found for '%s'.", value)}
	default:
		res = Result{Kind: KindFound, Message: fmt.Sprintf("Shipment found with status: %s.", shipment.Status), Shipment: shipment}
	}

	return c.finish(seq, true, res)
}

// Reset puts the controller back to idle, clearing results and message.
// Any search still in flight will come back stale.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latest++
	c.state = StateIdle
	c.shown = nil
	c.view.ClearResults()
	c.view.SetMessage(ui.ChannelSearch, "")
}

// ClearResults drops the displayed shipment but keeps the message.
func (c *Controller) ClearResults() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.shown = nil
	c.view.ClearResults()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight > 0 {
		return StateSearching
	}
	return c.state
}

// Shown is the shipment currently on screen, if any.
func (c *Controller) Shown() (*models.Shipment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shown, c.shown != nil
}

func (c *Controller) begin(remote bool) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latest++
	if remote {
		c.inFlight++
	}
	return c.latest
}

func (c *Controller) finish(seq uint64, remote bool, res Result) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if remote {
		c.inFlight--
	}

	if seq != c.latest {
		c.logger.Debugf("search #%d superseded by #%d, dropping %s", seq, c.latest, res.Kind)
		res.Stale = true
		return res
	}

	c.state = State(res.Kind)
	c.view.SetMessage(ui.ChannelSearch, res.Message)

	switch res.Kind {
	case KindFound:
		c.shown = res.Shipment
		c.view.ShowSummary(ui.SummaryFields(res.Shipment))
		c.view.ShowEvents(res.Shipment.Events)
	case KindNotFound, KindServiceError:
		// Never leave the previous shipment up next to a failure
		c.shown = nil
		c.view.ClearResults()
	}

	return res
}
