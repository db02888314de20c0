// Package client provides the `segstream` command-line client.
//
// The commands talk to a StreamGateway over gRPC through pkg/segstream.
//
// # Address configuration
//
// The gateway address comes from, in increasing precedence: the built-in
// default (localhost:9090), the JSON file named by SEGSTREAM_CONFIG, the
// SEGSTREAM_ENDPOINT variable and the --endpoint flag. Scope and stream
// default to the config values (myscope/mystream) unless --scope and
// --stream are given.
//
// Usage
//
//	segstream scope create --scope myscope
//	segstream stream create --scope myscope --stream mystream --segments 1
//	segstream stream update --scope myscope --stream mystream --segments 4
//	segstream stream list --scope myscope
//	segstream stream info --scope myscope --stream mystream
//
//	segstream write --data hello --data world
//	segstream write --file events.txt --routing-key orders
//
//	# Read everything stored so far, then stop
//	segstream read --bound tail
//	# Follow the stream; resume after a cut printed by an earlier read
//	segstream read --start 'myscope/mystream@g1:4294967296=42'
//	segstream read --bound tail --filter 'json.kind == "order"'
//
//	segstream fetch --segment 4294967296 --offset 0 --length 13
//
//	segstream demo --events 20
package client
