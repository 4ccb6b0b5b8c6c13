package helpers

import (
	"net/http"
	"strings"
	"time"
)

// ISO8601Milli is the timestamp layout used in every response envelope.
const ISO8601Milli = "2006-01-02T15:04:05.000Z07:00"

// NormaliseHeaders flattens HTTP headers into a map with lower-cased keys, keeping the first value of each.
func NormaliseHeaders(header http.Header) map[string]string {
	headers := make(map[string]string, len(header))
	for k, v := range header {
		if len(v) == 0 {
			continue
		}
		// XXX: we're losing duplicated headers here
		headers[strings.ToLower(k)] = v[0]
	}
	return headers
}

// LowerKeys returns a copy of m with lower-cased keys.
func LowerKeys(m map[string]string) map[string]string {
	lch := make(map[string]string, len(m))
	for k, v := range m {
		lch[strings.ToLower(k)] = v
	}
	return lch
}

// Timestamp returns the current UTC time formatted for response envelopes.
func Timestamp() string {
	return time.Now().UTC().Format(ISO8601Milli)
}
