// Package installer fetches the DC/OS installer script.
//
// The installer is downloaded over HTTP(S) or from S3-compatible object
// storage (s3://bucket/key). A local copy whose size equals the remote size
// is reused without downloading. Progress is reported every 10 percent and
// the stored file is made executable.
package installer
