package ports

import (
	"context"

	"borelog/domain/borehole"
)

// UploadLedger keeps an append-only history of accepted uploads.
type UploadLedger interface {
	Record(ctx context.Context, upload borehole.Upload) error
	Recent(ctx context.Context, limit int) ([]borehole.Upload, error)
}
