// Package notifier delivers status messages to chat channels.
//
// Notify fans a message out to every channel concurrently and waits for all
// of them. Delivery is best effort: failures are logged and counted, never
// retried and never returned to the caller. A channel without a destination
// is inert and only logs the message locally.
package notifier
