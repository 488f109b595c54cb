package dashboard

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/pixelforge/studio/pkg/observability"
	"github.com/pixelforge/studio/pkg/pricing"
	"github.com/pixelforge/studio/pkg/submission"
)

const (
	cacheSize = 1024
	cacheTTL  = 30 * time.Second
)

// Reader answers the dashboard's "current plan" query. Results are cached
// briefly per identity; the dashboard tolerates slightly stale data.
type Reader struct {
	submissions *submission.Store
	table       *pricing.Table
	cache       *lru.LRU[string, *Projection]
	metrics     *observability.Metrics
	logger      *logrus.Logger
}

// NewReader creates a dashboard reader. metrics may be nil.
func NewReader(submissions *submission.Store, table *pricing.Table, metrics *observability.Metrics, logger *logrus.Logger) *Reader {
	return &Reader{
		submissions: submissions,
		table:       table,
		cache:       lru.NewLRU[string, *Projection](cacheSize, nil, cacheTTL),
		metrics:     metrics,
		logger:      logger,
	}
}

// CurrentPlan returns the billing projection for the identity's most recent
// completed submission, or the "no active plan" projection when there is
// none.
func (r *Reader) CurrentPlan(ctx context.Context, ident submission.Identity) (*Projection, error) {
	key := cacheKey(ident)
	if p, ok := r.cache.Get(key); ok {
		if r.metrics != nil {
			r.metrics.DashboardCacheHits.Inc()
		}
		return p, nil
	}
	if r.metrics != nil {
		r.metrics.DashboardCacheMisses.Inc()
	}

	sub, err := r.submissions.LatestCompleted(ctx, ident)
	if err != nil {
		return nil, fmt.Errorf("failed to load current plan: %w", err)
	}

	var p *Projection
	if sub == nil {
		p = NoActivePlan()
	} else {
		p = Project(r.table, sub)
	}

	r.cache.Add(key, p)
	return p, nil
}

// Invalidate drops the cached projection for an identity. The webhook
// handler calls this when a session completes.
func (r *Reader) Invalidate(ident submission.Identity) {
	r.cache.Remove(cacheKey(ident))
}

func cacheKey(ident submission.Identity) string {
	if ident.UserID != nil {
		return fmt.Sprintf("u:%d", *ident.UserID)
	}
	return "e:" + ident.Email
}
