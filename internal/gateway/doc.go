// Package gateway serves the StreamGateway gRPC protocol on top of a
// runtime.Runtime. It is the reference store used by the CLI's server
// command and by segstreamtest.
//
//	srv, err := gateway.New(rt, logger)
//	if err != nil { ... }
//	go srv.ListenAndServe(ctx, ":9090")
//
// Cuts passed as read bounds must belong to the stream's current segment
// generation; otherwise ReadEvents fails with FailedPrecondition.
package gateway
