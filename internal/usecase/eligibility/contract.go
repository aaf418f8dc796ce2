package eligibility

import (
	"context"

	"github.com/kailas-cloud/schemematch/internal/domain/scheme"
)

// SchemeReader loads a single scheme for CheckScheme.
type SchemeReader interface {
	Get(ctx context.Context, id string) (scheme.Scheme, error)
}
