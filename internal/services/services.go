// Package services holds the operations that span several tables: container
// movements, the expired-ship sweep, accounts and analytics.
package services

import (
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrInvalidRole        = errors.New("role must be ADMIN or USER")
)

// SystemUser is recorded as the author of automatic container moves.
const SystemUser = "system"

// Event names pushed to websocket clients.
const (
	EventConteneureMoved = "conteneure_moved"
	EventNaviresCleaned  = "navires_cleaned"
)

// Publisher fans an event out to live clients. socket.Hub implements it.
type Publisher interface {
	Publish(event string, payload interface{})
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, interface{}) {}

func orNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

type clock func() time.Time
