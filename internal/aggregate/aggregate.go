// Package aggregate fans a single search out to every configured endpoint
// and merges the results.
package aggregate

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/heritage-cli/internal/arcgis"
	"github.com/sells-group/heritage-cli/internal/geodesy"
	"github.com/sells-group/heritage-cli/internal/heritage"
)

// Querier queries one endpoint. Implementations absorb their own failures
// and return an empty slice instead.
type Querier interface {
	Query(ctx context.Context, ep arcgis.Endpoint, centroid geodesy.Coordinate, radiusKm float64) []heritage.RawRecord
}

// Aggregator runs one Querier call per endpoint concurrently.
type Aggregator struct {
	querier     Querier
	concurrency int
}

// New creates an Aggregator. A concurrency of zero or less runs every
// endpoint at once.
func New(q Querier, concurrency int) *Aggregator {
	return &Aggregator{querier: q, concurrency: concurrency}
}

type queryIDKey struct{}

// WithQueryID attaches a query ID used to correlate log lines.
func WithQueryID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, queryIDKey{}, id)
}

// QueryID returns the query ID on ctx, if any.
func QueryID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(queryIDKey{}).(string)
	return id, ok && id != ""
}

// slot holds one endpoint's outcome. Each task writes only its own slot.
type slot struct {
	records []heritage.RawRecord
	elapsed time.Duration
	done    bool
}

// Aggregate queries every endpoint and returns their records concatenated
// in endpoint order, with Index stamped on each record. Failing endpoints
// contribute nothing. If ctx ends first, endpoints that already finished
// are kept and the rest are abandoned.
func (a *Aggregator) Aggregate(ctx context.Context, endpoints []arcgis.Endpoint, centroid geodesy.Coordinate, radiusKm float64) ([]heritage.RawRecord, error) {
	if err := geodesy.ValidateGeographic(centroid); err != nil {
		return nil, eris.Wrap(err, "aggregate: centroid")
	}
	if len(endpoints) == 0 {
		return nil, eris.New("aggregate: no endpoints configured")
	}

	queryID, ok := QueryID(ctx)
	if !ok {
		queryID = uuid.NewString()
		ctx = WithQueryID(ctx, queryID)
	}
	log := zap.L().With(
		zap.String("component", "aggregate"),
		zap.String("query_id", queryID),
	)
	start := time.Now()

	var mu sync.Mutex
	slots := make([]slot, len(endpoints))

	g, gctx := errgroup.WithContext(ctx)
	if a.concurrency > 0 {
		g.SetLimit(a.concurrency)
	}

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for i, ep := range endpoints {
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return nil
				default:
				}

				t := time.Now()
				records := a.querier.Query(gctx, ep, centroid, radiusKm)

				mu.Lock()
				slots[i] = slot{records: records, elapsed: time.Since(t), done: true}
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-finished:
	case <-ctx.Done():
		log.Warn("aggregate: deadline reached, abandoning unfinished endpoints", zap.Error(ctx.Err()))
	}

	mu.Lock()
	defer mu.Unlock()

	var merged []heritage.RawRecord
	completed := 0
	for i, s := range slots {
		if !s.done {
			log.Warn("aggregate: endpoint did not finish", zap.String("endpoint", endpoints[i].Name))
			continue
		}
		completed++
		log.Debug("aggregate: endpoint result",
			zap.String("endpoint", endpoints[i].Name),
			zap.Int("records", len(s.records)),
			zap.Duration("elapsed", s.elapsed),
		)
		for _, r := range s.records {
			r.Index = len(merged)
			merged = append(merged, r)
		}
	}
	if merged == nil {
		merged = []heritage.RawRecord{}
	}

	log.Info("aggregate: run complete",
		zap.Int("endpoints", len(endpoints)),
		zap.Int("completed", completed),
		zap.Int("records", len(merged)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return merged, nil
}
