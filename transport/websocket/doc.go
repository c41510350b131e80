// Package websocket provides the live result feed of the A* server.
//
// The websocket package implements:
//   - Channel-scoped WebSocket subscriptions
//   - Broadcasting of every finished solve
//   - Ping/pong keepalive and connection cleanup
//
// Architecture:
//
// A central Hub owns every connection. Registration, removal and broadcasts
// all pass through the hub's Run loop; each client has one goroutine reading
// and one writing.
//
// Message Protocol:
//
// Clients subscribe with ?channel=<scenario> (or "adhoc" for unnamed
// requests). Outgoing messages are JSON envelopes:
//
//	{"channel": "maze", "event": "solve_result", "data": {...}, "timestamp": "..."}
//
// Incoming messages are ignored.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("channel"))
//	})
//
//	hub.BroadcastResult("maze", result)
package websocket
