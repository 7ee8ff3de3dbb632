package ipfs

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// PlaceholderImageURL is used when a launch supplies no image.
const PlaceholderImageURL = "https://gateway.pinata.cloud/ipfs/QmQYHzkMdAx3oGZMeLLSpGAxD5gPr68qCHkNgjJN6WyY3a"

// TokenMetadata is the JSON descriptor pinned for a launched token.
type TokenMetadata struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Pinner is the storage capability the publisher needs.
type Pinner interface {
	PinFile(ctx context.Context, data []byte, filename, contentType string) (string, error)
	PinJSON(ctx context.Context, v interface{}, filename string) (string, error)
}

// Publisher turns a token descriptor plus an optional image into a durable
// content-addressed metadata URI.
type Publisher struct {
	pinner Pinner
}

// NewPublisher builds a Publisher over the given pinner.
func NewPublisher(pinner Pinner) *Publisher {
	return &Publisher{pinner: pinner}
}

// PublishResult carries the pinned image and descriptor locations.
type PublishResult struct {
	ImageURL    string
	MetadataURI string
}

// Publish pins the image first (if any), substitutes its content address
// into the descriptor, pins the finalized descriptor and returns both
// locations. Either upload failing is fatal to the launch.
func (p *Publisher) Publish(ctx context.Context, meta TokenMetadata, image []byte, imageName, imageContentType string) (*PublishResult, error) {
	if len(image) > 0 {
		imageURL, err := p.pinner.PinFile(ctx, image, imageName, imageContentType)
		if err != nil {
			return nil, fmt.Errorf("image upload failed: %w", err)
		}
		meta.Image = imageURL
		log.Infof("image pinned for %s: %s", meta.Symbol, imageURL)
	} else if meta.Image == "" {
		meta.Image = PlaceholderImageURL
	}

	uri, err := p.pinner.PinJSON(ctx, meta, "metadata.json")
	if err != nil {
		return nil, fmt.Errorf("metadata upload failed: %w", err)
	}
	log.Infof("metadata pinned for %s: %s", meta.Symbol, uri)
	return &PublishResult{ImageURL: meta.Image, MetadataURI: uri}, nil
}
