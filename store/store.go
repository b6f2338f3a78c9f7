package store

import (
	"fmt"
	"time"

	"github.com/gatherly/gatherly/internal/profile"
	"github.com/gatherly/gatherly/store/cache"
)

// Store provides database access to the application models.
type Store struct {
	profile *profile.Profile
	driver  Driver

	userCache *cache.Cache
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
		userCache: cache.New(cache.Config{
			DefaultTTL:      10 * time.Minute,
			CleanupInterval: 5 * time.Minute,
			MaxItems:        1000,
		}),
	}
}

// GetDriver returns the underlying database driver.
func (s *Store) GetDriver() Driver {
	return s.driver
}

// Close releases the cache and the database connection.
func (s *Store) Close() error {
	s.userCache.Close()
	return s.driver.Close()
}

func userCacheKey(id int32) string {
	return fmt.Sprintf("user/%d", id)
}
