// Package ws implements the WebSocket hub for pipeline-server.
//
// Hub manages a set of connected clients and broadcasts a dashboard
// snapshot to all of them on a configurable interval (server.stream.interval).
//
// New(src, interval) creates a Hub; src is usually the api.Handler.
// Hub.Run(ctx) starts the broadcast ticker and blocks until ctx is cancelled,
// then closes all active connections.
// Hub.ServeHTTP upgrades an HTTP connection to WebSocket, sends the current
// snapshot immediately on connect, then streams updates on each tick.
//
// Message format sent to clients:
//
//	{
//	  "event": "dashboard",
//	  "data":  {"stats": {...}, "system": {...}, "generatedAt": "2006-01-02 15:04:05"}
//	}
//
// The upgrader accepts all origins unless WithCheckOrigin is given; the server
// passes the CORS allow-list. The hub is mounted at /ws/stream.
package ws
