package auth

import (
	"net"

	"github.com/google/uuid"
)

// Request is an authorization request.
type Request struct {
	ID         *uuid.UUID
	IP         net.IP
	StreamName string
	StreamKey  string
}
