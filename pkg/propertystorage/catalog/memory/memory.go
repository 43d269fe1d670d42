package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/property-storage/pkg/propertystorage"
)

// Catalog is an in-memory implementation of the
// propertystorage.ObjectCatalog interface, used in tests.
type Catalog struct {
	mu     sync.RWMutex
	ids    map[string]uuid.UUID
	owners map[uuid.UUID]uuid.UUID
}

// New creates a new in-memory catalog.
func New() *Catalog {
	return &Catalog{
		ids:    make(map[string]uuid.UUID),
		owners: make(map[uuid.UUID]uuid.UUID),
	}
}

var _ propertystorage.ObjectCatalog = (*Catalog)(nil)

func catalogKey(bucket, objectKey string) string {
	return bucket + "/" + objectKey
}

// Add registers an object as the provider's catalog would after an upload and
// returns its catalog id. Test helper.
func (c *Catalog) Add(bucket, objectKey string) uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := uuid.New()
	c.ids[catalogKey(bucket, objectKey)] = id
	return id
}

// LookupObjectID resolves a (bucket, objectKey) pair to its catalog id.
func (c *Catalog) LookupObjectID(ctx context.Context, bucket, objectKey string) (uuid.UUID, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.ids[catalogKey(bucket, objectKey)]
	if !ok {
		return uuid.Nil, propertystorage.ErrObjectNotFound
	}
	return id, nil
}

// SetObjectOwner reassigns the recorded owner for an object.
func (c *Catalog) SetObjectOwner(ctx context.Context, objectID, ownerID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owners[objectID] = ownerID
	return nil
}

// Owner returns the recorded owner for an object id. Test helper.
func (c *Catalog) Owner(objectID uuid.UUID) (uuid.UUID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	owner, ok := c.owners[objectID]
	return owner, ok
}
