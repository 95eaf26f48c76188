package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/neo-approach-etl/internal/catalog"
	"github.com/couchcryptid/neo-approach-etl/internal/domain"
	"github.com/couchcryptid/neo-approach-etl/internal/observability"
)

// ErrUnlinked is returned when an approach names a designation the catalog
// does not hold and unlinked approaches are being dropped.
var ErrUnlinked = errors.New("approach has no matching NEO")

// ApproachTransformer implements Transformer by parsing a raw CAD row,
// linking it to its NEO, and serializing the linked result.
type ApproachTransformer struct {
	catalog      *catalog.Catalog
	dropUnlinked bool
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// NewTransformer creates an ApproachTransformer over cat. When dropUnlinked
// is set, approaches without a matching NEO fail the transform instead of
// being published with a null neo.
func NewTransformer(cat *catalog.Catalog, dropUnlinked bool, metrics *observability.Metrics, logger *slog.Logger) *ApproachTransformer {
	return &ApproachTransformer{
		catalog:      cat,
		dropUnlinked: dropUnlinked,
		metrics:      metrics,
		logger:       logger,
	}
}

func (t *ApproachTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	ca, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	held, err := t.catalog.Attach(ca)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("link %s: %w", ca.Designation(), err)
	}
	if held != nil {
		return domain.SerializeApproach(held)
	}

	t.metrics.UnlinkedApproaches.Inc()
	if t.dropUnlinked {
		return domain.OutputEvent{}, fmt.Errorf("%w: %q", ErrUnlinked, ca.Designation())
	}
	t.logger.Debug("publishing unlinked approach", "designation", ca.Designation())
	return domain.SerializeApproach(ca)
}
