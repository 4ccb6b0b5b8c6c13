// Package models provides the core data structures for handling webhook requests and responses.
package models

// Request represents an incoming client request containing a raw body and lower-cased headers.
type Request struct {
	Body    []byte
	Headers map[string]string
}

// Response defines the structure for an HTTP response containing a JSON-serialisable body and a status code.
type Response struct {
	Body       any
	StatusCode int
}
