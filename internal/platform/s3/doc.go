// Package s3 reads installer artifacts from S3-compatible object storage,
// such as OVH Object Storage or AWS S3.
//
// Objects are addressed as s3://bucket/key. Credentials and region come from
// the standard AWS configuration chain unless OVHDCOS_S3_ACCESS_KEY and
// OVHDCOS_S3_SECRET_KEY are set. OVHDCOS_S3_ENDPOINT points the client at a
// non-AWS endpoint and switches to path-style addressing.
package s3
