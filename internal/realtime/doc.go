// Package realtime is the websocket side of task notifications.
//
// A Gateway authenticates each handshake from its token query parameter,
// upgrades the request and joins the resulting Connection to the user's
// private group in the Registry. While the connection lives, Gateway.Run
// reads command frames and hands them to a FrameHandler, and a writer
// goroutine drains the connection's Outbox and sends keepalive pings.
//
// The Broadcaster implements events.Sender: it serializes an event once and
// enqueues it on every member of a group without blocking. A recipient whose
// outbox is full or closed loses that frame; nothing else is affected.
package realtime
