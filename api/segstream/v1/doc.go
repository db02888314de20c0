// Package segstreamv1 defines the StreamGateway wire API: request and
// response messages, their protobuf wire encoding, and the gRPC service
// description shared by the client engine and the reference gateway.
//
// Messages are plain structs encoded with protowire rather than generated
// protobuf types. The codec registers itself with gRPC under the "segwire"
// content-subtype and the client stub selects it on every call, so servers
// only need RegisterStreamGatewayServer.
package segstreamv1
