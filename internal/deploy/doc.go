// Package deploy turns a set of ready hosts into a DC/OS cluster.
//
// The pipeline assigns master and agent roles, writes genconf/config.yaml,
// prepares every host concurrently and finally runs the installer phases
// one after another:
//
//	genconf -> install-prereqs -> preflight -> deploy -> postflight
//
// Host preparation retries each host on its own and never stops the run.
// An installer phase is never retried; its failure aborts the pipeline.
package deploy
