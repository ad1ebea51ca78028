// Package provisioning provides shared types, interfaces, and orchestration
// for a deployment run.
//
// # Subpackages
//
//   - compute/: instance requests, readiness polling, error recovery, cleanup
//
// # Core Types
//
// Context carries the run's context, observer, timeouts, metrics and state.
// Phase defines a run step with Name() and Provision() methods.
// State accumulates results from each phase (ready hosts, role assignment).
package provisioning
