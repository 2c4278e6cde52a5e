// Package history persists interactive prompt input in SQLite.
//
// The store keeps every accepted line in insertion order. Readers fetch the
// most recent lines oldest first, ready to be replayed into a line editor:
//
//	store, err := history.Open(ctx, history.Config{Path: path})
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	lines, err := store.Recent(ctx, 1000)
//
// The schema is managed with embedded golang-migrate migrations and applied
// on Open.
package history
