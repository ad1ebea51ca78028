// Package shell runs commands on the local host or on a remote host over ssh
// and streams their output line by line while they run.
//
// A Target starts a command and returns a Process. The Process exposes the
// merged stdout and stderr as a lazy sequence of lines and reports success as
// a zero exit code. Runner ties both together and copies every line to a sink.
//
// Remote targets use public key authentication only, never prompt, skip host
// key verification and request a pty so that sudo works on hosts configured
// with requiretty. Instances are ephemeral, so their host keys are unknown.
package shell
