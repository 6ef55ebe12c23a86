// Package cli provides the SnapNote device command-line client.
//
// Commands:
//   - add:  capture a note (photo + text) into the local queue and try to
//     deliver it right away
//   - list: show stored notes, newest first, with their delivery status
//   - sync: run the sync engine once
//   - run:  keep the agent running; sync on reconnect and on a schedule
//
// Every command opens the local SQLite queue, so notes captured offline are
// kept until a later sync run delivers them.
package cli
