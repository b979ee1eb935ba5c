// Package protocol owns the BITS transmission contract.
//
// Ownership boundary:
// - packet model (header, literal, operator)
// - decode/encode over the bits primitives
// - semantic validation and expression evaluation
package protocol
