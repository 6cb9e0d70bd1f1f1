// Package usefetch wraps a single network request with caching, bounded
// retry, per-attempt timeout and cooperative cancellation, and exposes the
// fetch lifecycle as an observable {data, error, loading} snapshot for a host
// UI binding to render.
package usefetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/use-fetch/use-fetch/cache"

	"github.com/rs/zerolog"
)

// Doer executes one HTTP request. The request context carries both the
// per-attempt deadline and the logical request's cancellation, and
// implementations are expected to honor it the way *http.Client does.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	// Storage for fetched bodies, shared between all controllers that
	// reference it. An in-memory store is used if nil.
	Cache cache.Store
	// HTTP client to use. http.DefaultClient semantics if nil.
	Client Doer
	// Logger to use. Logging is off if nil.
	Logger *zerolog.Logger
	// Optional function invoked after every snapshot transition.
	// Use it e.g. for pushing state into a UI binding.
	OnUpdate func(Snapshot)
}

// Controller drives zero or more network attempts for one logical request at
// a time to a terminal outcome, honoring cache, retry budget and timeout.
// A Controller is safe for concurrent use.
type Controller struct {
	cache    cache.Store
	client   Doer
	log      zerolog.Logger
	onUpdate func(Snapshot)

	mu      sync.Mutex
	gen     uint64
	req     Request
	active  bool
	settled bool
	snap    Snapshot
	done    chan struct{}
	cancel  context.CancelFunc
}

// New initializes a controller.
func New(config Config) *Controller {
	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}
	store := config.Cache
	if store == nil {
		store = cache.NewMemStore()
	}
	client := config.Client
	if client == nil {
		client = &http.Client{}
	}
	return &Controller{
		cache:    store,
		client:   client,
		log:      logger,
		onUpdate: config.OnUpdate,
	}
}

// Start begins a logical request, superseding any prior one owned by this
// controller. The superseded request is cancelled and delivers nothing from
// then on. Starting a request value-equal to the current one is a no-op.
func (c *Controller) Start(req Request) {
	c.mu.Lock()
	if c.active && c.req.Equal(req) {
		c.mu.Unlock()
		return
	}
	if c.cancel != nil {
		c.cancel()
	}
	// release anyone waiting on the superseded request
	if c.done != nil && !c.settled {
		close(c.done)
	}
	c.gen++
	gen := c.gen
	c.req = req
	c.active = true
	c.settled = false
	c.snap = Snapshot{Loading: true}
	c.done = make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	snap := c.snap
	c.mu.Unlock()

	c.notify(snap)
	go c.run(ctx, gen, req)
}

// Cancel cancels the current logical request: the in-flight attempt (if any)
// is aborted, no scheduled retry will fire, and no further snapshot
// transition will be observed. Call it on scope teardown, always.
func (c *Controller) Cancel() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	// invalidate the generation so a late outcome is discarded
	c.gen++
	c.active = false
	done := c.done
	settled := c.settled
	c.done = nil
	c.mu.Unlock()

	if done != nil && !settled {
		close(done)
	}
}

// Snapshot returns the current observable state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Done returns a channel that is closed when the current logical request
// settles or is cancelled. If no request is active the returned channel is
// already closed.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return c.done
}

// run drives one logical request to its terminal outcome.
// Every observable effect is gated on gen still being the current generation.
func (c *Controller) run(ctx context.Context, gen uint64, req Request) {
	policy := req.Policy.withDefaults()
	key := req.URL
	log := c.log.With().Str("key", key).Logger()

	// the cache is consulted once per logical request, never on retries
	if !policy.DisableCache {
		if value, ok, err := c.cache.Get(key); err != nil {
			log.Warn().Err(err).Msg("Could not read from store")
		} else if ok {
			var data any
			if derr := json.Unmarshal(value, &data); derr != nil {
				// corrupted entry, fall through to the network
				log.Error().Err(derr).Msg("Could not decode stored body")
			} else {
				log.Trace().Msg("Cache hit")
				c.settle(gen, Snapshot{Data: data})
				return
			}
		}
	}

	var last *Error
	for attempt := 0; ; attempt++ {
		data, raw, ferr := c.attempt(ctx, req, policy)
		if ctx.Err() != nil {
			// cancelled: no cache write, no delivery
			log.Trace().Int("attempt", attempt).Msg("Request cancelled")
			return
		}
		if ferr == nil {
			if !policy.DisableCache {
				if err := c.cache.Set(key, raw); err != nil {
					log.Error().Err(err).Msg("Could not write to store")
				} else {
					log.Trace().Msg("Store write")
				}
			}
			log.Debug().Int("attempt", attempt).Msg("Request succeeded")
			c.settle(gen, Snapshot{Data: data})
			return
		}
		last = ferr
		log.Trace().Int("attempt", attempt).Str("kind", string(ferr.Kind)).Msg(ferr.Message)
		if attempt >= policy.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			log.Trace().Int("attempt", attempt).Msg("Request cancelled during backoff")
			return
		case <-time.After(policy.RetryDelay):
		}
	}

	log.Debug().Str("kind", string(last.Kind)).Msg(last.Message)
	c.settle(gen, Snapshot{Err: last})
}

// attempt issues exactly one network call bound to the attempt deadline.
// On success it returns the decoded body along with the raw bytes for the
// cache write.
func (c *Controller) attempt(ctx context.Context, req Request, policy Policy) (any, []byte, *Error) {
	actx, cancel := context.WithTimeout(ctx, policy.Timeout)
	// releases the attempt timer as soon as the attempt settles
	defer cancel()

	method := req.Options.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if len(req.Options.Body) > 0 {
		body = bytes.NewReader(req.Options.Body)
	}
	hreq, err := http.NewRequestWithContext(actx, method, req.URL, body)
	if err != nil {
		// the call never reached the transport, e.g. a malformed URL
		return nil, nil, &Error{Kind: KindNetwork, Message: "Network error: " + err.Error()}
	}
	for name, values := range req.Options.Header {
		for _, value := range values {
			hreq.Header.Add(name, value)
		}
	}

	res, err := c.client.Do(hreq)
	if err != nil {
		return nil, nil, classifyTransport(err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, nil, classifyTransport(err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, nil, &Error{
			Kind:    KindServerError,
			Message: fmt.Sprintf("Server Error: %d - %s", res.StatusCode, raw),
		}
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, nil, &Error{Kind: KindDecodeError, Message: err.Error()}
	}
	return data, raw, nil
}

// settle delivers a terminal snapshot, unless the logical request has been
// superseded or cancelled in the meantime.
func (c *Controller) settle(gen uint64, snap Snapshot) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.snap = snap
	c.settled = true
	done := c.done
	c.mu.Unlock()

	close(done)
	c.notify(snap)
}

func (c *Controller) notify(snap Snapshot) {
	if c.onUpdate != nil {
		c.onUpdate(snap)
	}
}
