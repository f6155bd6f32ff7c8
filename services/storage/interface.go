package storage

import (
	"context"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// SummaryStorage keeps the rendered schedule image a client captured at
// submit time and returns a URL it can be shared by.
type SummaryStorage interface {
	UploadSummary(ctx context.Context, team, publicID, image string) (string, error)
}

// uploadAPI is the part of the Cloudinary upload API used here.
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

// StorageServiceImpl implements SummaryStorage on Cloudinary.
type StorageServiceImpl struct {
	upload uploadAPI
	folder string
}
