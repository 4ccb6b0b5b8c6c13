package processor

import (
	"cmp"
	"context"
	"log/slog"
)

// Archiver stores raw webhook payloads.
type Archiver interface {
	PutS3Object(ctx context.Context, id string, bucket string, body []byte) error
}

type s3UploaderPostProcessor struct {
	archiver Archiver
	bucket   string
}

// NewS3UploaderPostProcessor returns a Processor archiving every verified payload to the given bucket.
// Upload failures are logged and never change the response.
func NewS3UploaderPostProcessor(archiver Archiver, bucket string) Processor {
	return &s3UploaderPostProcessor{archiver: archiver, bucket: bucket}
}

func (p *s3UploaderPostProcessor) Name() string {
	return "post-processor:s3-uploader"
}

func (p *s3UploaderPostProcessor) Process(ctx context.Context, logger *slog.Logger, bus *Bus) error {
	id := cmp.Or(bus.Event.Type, "unknown") + "." + cmp.Or(bus.Event.DeliveryID, "no-delivery-id")
	if err := p.archiver.PutS3Object(ctx, id, p.bucket, bus.Event.Body); err != nil {
		logger.Warn("failed to store event in S3", slog.Any("error", err))
		return nil
	}
	logger.Debug("event stored in S3", slog.String("bucket", p.bucket), slog.String("id", id))
	return nil
}
