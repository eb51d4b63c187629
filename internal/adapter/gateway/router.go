package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/bankdash/internal/domain"
	"github.com/iho/bankdash/internal/infrastructure/metrics"
)

// DefaultProbeTimeout bounds the start-up health probe.
const DefaultProbeTimeout = 3 * time.Second

// Remote is a gateway that can be health-checked.
type Remote interface {
	Submit(ctx context.Context, intent domain.TransactionIntent) (*domain.CommitReceipt, error)
	Probe(ctx context.Context) error
}

// Router selects between the remote API and local simulation. The choice is
// made once by Init and kept for the life of the process.
type Router struct {
	remote       Remote
	simulator    *Simulator
	probeTimeout time.Duration
	metrics      *metrics.Metrics
	logger       zerolog.Logger

	once sync.Once
	mu   sync.RWMutex
	mode domain.GatewayMode
}

// NewRouter creates a Router. remote may be nil when no API is configured.
// Until Init runs every submission is simulated.
func NewRouter(remote Remote, simulator *Simulator, probeTimeout time.Duration, metrics *metrics.Metrics, logger zerolog.Logger) *Router {
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}

	return &Router{
		remote:       remote,
		simulator:    simulator,
		probeTimeout: probeTimeout,
		metrics:      metrics,
		logger:       logger.With().Str("component", "gateway_router").Logger(),
		mode:         domain.GatewayModeSimulation,
	}
}

// Init probes the remote API once and selects the submission path.
// Later calls return the mode chosen by the first one.
func (r *Router) Init(ctx context.Context) domain.GatewayMode {
	r.once.Do(func() {
		mode := r.selectMode(ctx)

		r.mu.Lock()
		r.mode = mode
		r.mu.Unlock()

		if r.metrics != nil {
			r.metrics.SetGatewayMode(string(mode))
		}
	})

	return r.Mode()
}

func (r *Router) selectMode(ctx context.Context) domain.GatewayMode {
	if r.remote == nil {
		r.logger.Info().Msg("no remote API configured, using local simulation")
		return domain.GatewayModeSimulation
	}

	probeCtx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	if err := r.remote.Probe(probeCtx); err != nil {
		r.logger.Warn().Err(err).Msg("remote API unreachable, using local simulation for this session")
		return domain.GatewayModeSimulation
	}

	r.logger.Info().Msg("remote API reachable")
	return domain.GatewayModeRemote
}

// Submit forwards the intent to the selected path.
func (r *Router) Submit(ctx context.Context, intent domain.TransactionIntent) (*domain.CommitReceipt, error) {
	if r.Mode() == domain.GatewayModeRemote {
		return r.remote.Submit(ctx, intent)
	}
	return r.simulator.Submit(ctx, intent)
}

// Mode reports the selected path.
func (r *Router) Mode() domain.GatewayMode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mode
}
