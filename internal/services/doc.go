// Package services defines the error taxonomy shared by the remote service
// clients.
//
// The sentinels separate transport failures (never retried), remote request
// failures (carry status and body via RequestError), authentication failures,
// and parse failures, so the command layer can decide between the FATAL
// surface and a plain non-zero exit without string matching.
package services
