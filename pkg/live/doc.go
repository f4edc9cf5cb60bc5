// Package live serves the demo over WebSockets.
//
// Each connection gets its own Session: a reactive runtime, a component
// tree and a demo store, all driven from one goroutine. Client actions and
// clock ticks are fed into that goroutine; after each one the tree is
// flushed and every re-rendered node is sent to the browser as a patch.
//
// # Protocol
//
// Client to server:
//
//	{"action": "randomA"}
//	{"action": "setName", "value": "Ada"}
//
// Server to client:
//
//	{"type": "init", "html": "..."}
//	{"type": "patch", "node": "n7", "component": "ABC", "html": "..."}
//	{"type": "error", "code": "P002", "error": "..."}
package live
