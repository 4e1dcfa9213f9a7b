// Package cloud implements the cloud provider client. This is part of the
// Imperative Shell - handles I/O with the provider API. Core packages and
// tests depend on the InstanceAPI interface, never on the SDK directly.
package cloud

import (
	"context"
	"errors"
	"time"
)

// ErrInstanceNotFound is returned when a lookup targets an instance that no
// longer exists. Callers report status "missing" instead of failing.
var ErrInstanceNotFound = errors.New("instance not found")

// Instance mirrors the provider instance fields the tool consumes.
type Instance struct {
	ID      int
	Label   string
	Status  string
	Region  string
	Type    string
	Tags    []string
	IPv4    []string
	Created time.Time
}

// CreateRequest contains parameters for creating a cloud instance. UserData
// carries the base64-encoded provisioning document.
type CreateRequest struct {
	Region   string
	Type     string
	Image    string
	Label    string
	RootPass string
	Tags     []string
	UserData string
}

// InstanceAPI defines the provider operations the tool needs.
type InstanceAPI interface {
	// CreateInstance provisions a new instance carrying the encoded
	// provisioning document and identity tags.
	CreateInstance(ctx context.Context, req CreateRequest) (*Instance, error)

	// GetInstance fetches one instance by id. Returns ErrInstanceNotFound
	// when the instance no longer exists.
	GetInstance(ctx context.Context, id int) (*Instance, error)

	// ListInstances enumerates all live instances on the account.
	ListInstances(ctx context.Context) ([]Instance, error)

	// DeleteInstance terminates an instance.
	DeleteInstance(ctx context.Context, id int) error
}
