// Package lsp connects codeshell to an external language server.
//
// A Proxy is constructed and owned by the application and handed to the
// session; there is no package-level instance. Start spawns the configured
// server at most once and performs the initialize handshake over a
// Transport, the JSON-RPC 2.0 base protocol with Content-Length framing.
//
// Start failures are recoverable. The proxy records them, reports
// StatusFailed and answers later requests with ErrNotRunning, while the
// editor keeps working without language features.
package lsp
