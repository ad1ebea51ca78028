// Package ovh provides a thin, retrying request/response layer over the
// OVH Public Cloud API.
//
// # Architecture
//
//   - client.go: the narrow API capability, real client construction and the
//     retrying Gateway
//   - errors.go: error classification for retry logic
//   - types.go: wire models of the endpoints the deployer consumes
//   - mock_client.go: function-field mocks for tests
//
// # Retry
//
// Retry is applied as a decorator around every outbound call rather than by
// extending the go-ovh client. A call is attempted up to three times in total
// when it fails transiently (network error, HTTP 5xx, HTTP 429). Any other
// API error is permanent and returned on the first attempt.
//
// # Credentials
//
// Credentials are read by go-ovh from OVH_ENDPOINT, OVH_APPLICATION_KEY,
// OVH_APPLICATION_SECRET and OVH_CONSUMER_KEY or from ovh.conf.
package ovh
