// Package events is the in-process publish/subscribe bus for window
// lifecycle events.
//
// Delivery is synchronous and ordered: Publish calls every handler that was
// subscribed when the publish started, in subscription order, before it
// returns. A handler that returns an error or panics is logged and skipped;
// delivery to the remaining handlers continues. There is no queueing.
package events
