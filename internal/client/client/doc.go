// Package client contains the device agent's building blocks for talking to
// the collector and for opening the local database.
//
// # Overview
//
// The package provides:
//  1. The Client interface: Ping, UploadNote and ReportSynced.
//  2. HTTPClient, its implementation over the collector's HTTP API
//     (multipart note uploads, JSON sync reports).
//  3. OpenDatabase and RunMigrations, which open the SQLite note database
//     and apply the embedded goose migrations.
//
// # Error Handling
//
// Upload failures of any kind wrap common.ErrTransferFailure. Network-level
// failures additionally wrap ErrUnavailable; non-2xx responses surface as
// *netx.StatusError. Match them with errors.Is / errors.As.
//
// All operations accept a context.Context and honor cancellation/timeouts.
package client
