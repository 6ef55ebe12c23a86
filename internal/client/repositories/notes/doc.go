// Package notes provides the durable note store of the device agent.
//
// # Overview
//
// Repository is the contract used by the capture workflow and the sync
// engine. SQLiteRepository persists notes in the local SQLite database
// created by internal/client/migrations.
//
// # Ordering
//
// ListByStatus returns notes oldest first; the sync engine relies on that
// order to deliver notes in capture order and to resume from the oldest
// pending note after a failure. ListAll returns newest first for display.
// Notes sharing a timestamp keep their insertion order.
//
// # Status transitions
//
// Status only moves from pending to synced. SetStatus never reports a
// missing note: a retried sync must not fail on a record that was already
// updated.
//
// # Concurrency
//
// Every operation is a single statement or a single transaction, so callers
// observe a consistent snapshot per call. The database is opened with one
// connection (see client.OpenDatabase), which serialises writers inside a
// process. Several processes may open the same file (a long-running agent
// next to one-shot commands): writes never upgrade a read snapshot, so they
// wait on busy_timeout instead of failing with SQLITE_BUSY, and the run
// lease (sync_lease table) keeps sync runs of different processes from
// overlapping.
package notes
