// Package pebblestore wraps Pebble with the fsync policy and logger used by
// the reference gateway.
//
//	db, err := pebblestore.Open(pebblestore.Options{
//	    DataDir: dir,
//	    Fsync:   pebblestore.FsyncModeInterval,
//	    Logger:  logger,
//	})
//	if err != nil { ... }
//	defer db.Close()
//
//	b := db.NewBatch()
//	_ = b.Set(k, v, nil)
//	_ = db.CommitBatch(b)
//	b.Close()
//
// Snapshots give multi-key reads a single point in time; segment tails read
// through one snapshot form a consistent stream cut.
package pebblestore
