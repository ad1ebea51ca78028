// Package config defines the run configuration of a deployment.
//
// [Options] carries the operator's inputs (project, ssh key, node counts,
// region, flavor, image, installer source) as parsed from the command line.
// [Timeouts] carries the tunable retry and timeout knobs, read from the
// environment by [LoadTimeouts].
package config
