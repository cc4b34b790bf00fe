// Package queue owns the download queue. A single loop goroutine holds every
// QueueItem and applies all mutations in order: commands from the
// presentation layer and results from pool workers both arrive as messages
// in an unbounded mailbox, and presentation callbacks (Events) are only ever
// invoked from that loop.
package queue
