package core

import "time"

// ErrorKind classifies probe failures. A verdict with an empty kind
// completed without a network error.
type ErrorKind string

const (
	ErrorKindTimeout ErrorKind = "timeout"
	ErrorKindRefused ErrorKind = "refused"
	ErrorKindTLS     ErrorKind = "tls_error"
	ErrorKindOther   ErrorKind = "other"
)

// VerificationVerdict is the outcome of probing one candidate.
// Resolvable=false with ErrorKindTimeout means the DNS query itself
// timed out rather than returning NXDOMAIN.
type VerificationVerdict struct {
	Host       string        `json:"host"`
	Rank       int           `json:"rank"`
	Rule       GenRule       `json:"rule"`
	Resolvable bool          `json:"resolvable"`
	Reachable  bool          `json:"reachable"`
	Scheme     string        `json:"scheme,omitempty"`
	StatusCode int           `json:"status_code,omitempty"`
	Latency    time.Duration `json:"latency"`
	ErrorKind  ErrorKind     `json:"error_kind,omitempty"`
}
