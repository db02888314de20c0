// Package id generates the 128-bit identifiers segstream uses for writer
// identities and default routing keys.
//
// An ID is 16 bytes big-endian, [8 bytes unix ms][8 bytes sequence], so the
// byte order of two IDs is also their creation order within one process.
// The hex String form is what travels on the wire as a routing key.
//
//	w := id.New()
//	key := w.String()      // 32 hex chars
//	back, _ := id.Parse(key)
package id
