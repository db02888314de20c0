// Package catalog persists scope and stream metadata for the reference
// gateway: each stream's scaling policy and its history of segment epochs.
//
// A stream starts with epoch 1 holding MinSegments segments. A rescale
// appends a new epoch; the previous epoch's segments are sealed by the
// caller in the same Pebble batch, so readers never observe a new epoch
// while the old one can still grow.
package catalog
