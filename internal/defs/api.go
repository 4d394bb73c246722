// Package defs contains shared definitions.
package defs

import (
	"time"

	"github.com/google/uuid"
)

// APIError is a generic error.
type APIError struct {
	Error string `json:"error"`
}

// APIInfo is a response to a info request.
type APIInfo struct {
	Version string    `json:"version"`
	Started time.Time `json:"started"`
}

// APIRTMPConnState is the state of a RTMP connection.
type APIRTMPConnState string

// APIRTMPConn is a RTMP connection.
type APIRTMPConn struct {
	ID            uuid.UUID        `json:"id"`
	Created       time.Time        `json:"created"`
	RemoteAddr    string           `json:"remoteAddr"`
	State         APIRTMPConnState `json:"state"`
	Stream        string           `json:"stream"`
	Tracks        []string         `json:"tracks"`
	BytesReceived uint64           `json:"bytesReceived"`
	BytesSent     uint64           `json:"bytesSent"`
}

// APIRTMPConnList is a list of RTMP connections.
type APIRTMPConnList struct {
	ItemCount int            `json:"itemCount"`
	PageCount int            `json:"pageCount"`
	Items     []*APIRTMPConn `json:"items"`
}

// APIStream is a stream that is being broadcasted.
type APIStream struct {
	Name   string    `json:"name"`
	ConnID uuid.UUID `json:"connId"`
}

// APIStreamList is a list of streams.
type APIStreamList struct {
	ItemCount int          `json:"itemCount"`
	PageCount int          `json:"pageCount"`
	Items     []*APIStream `json:"items"`
}

// APIOK is returned on success.
type APIOK struct {
	Status string `json:"status"`
}
