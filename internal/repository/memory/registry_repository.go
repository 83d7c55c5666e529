package memory

import (
	"time"

	"sysassist-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// RegistryRepository keeps each logged-in user's session registry in
// process memory, keyed by email. Entries expire after inactivity and
// are rehydrated from the durable store on the next request.
type RegistryRepository struct {
	cache *cache.Cache
}

func NewRegistryRepository() *RegistryRepository {
	// Registries idle for an hour are dropped; expired entries are
	// purged every 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &RegistryRepository{
		cache: c,
	}
}

func (r *RegistryRepository) Save(registry *store.Registry) {
	r.cache.Set(registry.Email, registry, cache.DefaultExpiration)
}

func (r *RegistryRepository) Get(email string) (*store.Registry, bool) {
	if x, found := r.cache.Get(email); found {
		return x.(*store.Registry), true
	}
	return nil, false
}

func (r *RegistryRepository) Delete(email string) {
	r.cache.Delete(email)
}
