// Package parse converts raw key=value command tokens into typed values.
//
// Inference is an explicit ordered rule cascade with first-match-wins
// semantics: quoted text, booleans, width-suffixed integers, hex literals,
// floats, known-scheme URIs, then plain text. A bare key with no '=' yields a
// null value; a token with more than one '=' is rejected.
package parse
