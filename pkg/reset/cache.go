package reset

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Cache flushes the selected database of a redis server.
type Cache struct {
	client redis.Cmdable
}

// NewCache returns a Cache using client.
func NewCache(client redis.Cmdable) *Cache {
	return &Cache{client: client}
}

// Flush removes every key of the client's selected database.
func (c *Cache) Flush(ctx context.Context) error {
	if err := c.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("flush cache: %w", err)
	}
	return nil
}
