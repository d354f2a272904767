// Package web implements the browser backend.
//
// A Server hosts a small editor page and a websocket endpoint. Every item
// opened with the web backend gets a Surface registered under the item id;
// the page connects to /ws?item=<id> and the two sides exchange JSON
// messages tagged by a "type" field.
//
// Inbound messages are decoded on the connection's read goroutine and then
// posted to the UI loop, so the session only ever sees them on its own
// goroutine. Surface queries (Text, Selection, PositionAt, RectFor) answer
// from the last snapshot the page pushed. Outbound messages are queued per
// connection and written by a single writer goroutine.
package web
