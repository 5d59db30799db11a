package application

import (
	"context"
	"io"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/idol-catalog/pkg/events"
	"github.com/oksasatya/idol-catalog/pkg/helpers"
)

// EventPublisher delivers catalog events to the indexer.
type EventPublisher interface {
	Publish(ctx context.Context, evt events.IdolEvent) error
}

// ImageStore persists idol images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

type RabbitEvents struct {
	Pub *helpers.RabbitPublisher
}

func NewRabbitEvents(pub *helpers.RabbitPublisher) *RabbitEvents {
	return &RabbitEvents{Pub: pub}
}

func (e *RabbitEvents) Publish(ctx context.Context, evt events.IdolEvent) error {
	return e.Pub.PublishJSON(ctx, evt.Type, evt)
}

type GCSImages struct {
	Client *storage.Client
	Bucket string
}

func NewGCSImages(client *storage.Client, bucket string) *GCSImages {
	return &GCSImages{Client: client, Bucket: bucket}
}

func (g *GCSImages) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	return helpers.UploadObject(ctx, g.Client, g.Bucket, objectPath, contentType, r)
}
