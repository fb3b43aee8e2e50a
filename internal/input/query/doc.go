// Package query coordinates terminal capability queries.
//
// A query writes a probe to the terminal and waits for the matching reply
// in the input stream. At most one query is outstanding. While it is, key
// resolution is suspended: the coordinator scans the queue for the reply
// and removes only that event, so keys typed before or after the reply are
// resolved afterwards in their original order.
//
// A query that gets no reply within its timeout, or that is interrupted,
// completes with TimedOut set.
package query
