package driven

import (
	"context"

	"github.com/ericfisherdev/mybitbucket/internal/domain/model"
)

// FailureStore defines the driven port for the failure journal.
type FailureStore interface {
	Record(ctx context.Context, rec model.FailureRecord) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]model.FailureRecord, error)
	CountByRecord(ctx context.Context) (map[string]int, error)
}
