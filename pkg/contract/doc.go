// Package contract exposes the public types for the HTTP contracts of the
// dashboard and the prediction services it calls. Each contract is an OpenAPI
// 3 document; loading, parsing and payload validation are implemented under
// internal/contract so kin-openapi stays an implementation detail.
package contract
