// Package retry provides bounded retry logic for transient failures.
//
// The [WithExponentialBackoff] function retries an operation with a
// configurable attempt ceiling, initial delay, multiplier and maximum delay.
// A multiplier of 1 gives a fixed delay and a zero initial delay retries
// immediately. It is used for OVH API calls and for remote host preparation.
package retry
