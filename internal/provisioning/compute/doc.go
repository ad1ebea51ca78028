// Package compute provisions the cluster's instances on OVH Public Cloud.
//
// Instances are requested in one bulk call and then polled until every one
// accepts TCP connections on the ssh port. Each instance moves through
//
//	Requested -> Building -> Active -> SSHPending -> Ready
//
// An instance the provider reports as ERROR is deleted and replaced by a
// fresh single-instance request with identical parameters, so the working
// set always holds exactly the requested number of instances. Cleanup
// deletes the whole working set exactly once.
package compute
