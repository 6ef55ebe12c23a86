package client

import (
	"context"

	"github.com/dmitrijs2005/snapnote/internal/client/models"
)

// Client is the device's view of the collector.
type Client interface {
	// Ping checks that the collector is reachable.
	Ping(ctx context.Context) error

	// UploadNote submits one note in a single transfer. Any failure wraps
	// common.ErrTransferFailure.
	UploadNote(ctx context.Context, note *models.Note) error

	// ReportSynced tells the collector how many notes the last sync run
	// delivered so it can notify subscribed devices.
	ReportSynced(ctx context.Context, count int) error
}
