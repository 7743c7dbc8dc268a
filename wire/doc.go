// Package wire owns the binary message schemas and their codec.
//
// Two self-describing schemas share a fixed header (magic, schema byte,
// timestamp in nanoseconds, correlation id, tag):
//
//	Event:  header | key | kind | scalar-or-text payload
//	Tensor: header | elem kind | rank | dims (uint32 each) | row-major bytes
//
// Buffers are sized exactly before any byte is written. Every encode call
// consumes one correlation id from its id source whether or not it succeeds.
package wire
