// Package sonic reads and writes SONiC CONFIG_DB over Redis, mapping
// between table entries and the fabric's semantic fact key space.
package sonic

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/fabricmesh/fabrictl/pkg/device"
	"github.com/fabricmesh/fabrictl/pkg/fabric"
)

const configDBIndex = 4

// Client is a thin wrapper around a CONFIG_DB Redis connection.
// Entries are hashes keyed "TABLE|key" (or "TABLE|key1|key2").
type Client struct {
	rdb    *redis.Client
	tunnel *device.SSHTunnel
}

// Dial connects to a device's CONFIG_DB. When the device profile has
// SSH credentials, Redis is reached through an SSH tunnel, since SONiC
// does not expose 6379 on the management network.
func Dial(ctx context.Context, dev *fabric.Device) (*Client, error) {
	c := &Client{}

	addr := fmt.Sprintf("%s:%d", dev.Mgmt, 6379)
	if dev.SSHUser != "" {
		tun, err := device.NewSSHTunnel(dev.Mgmt, dev.SSHUser, dev.SSHPass, "127.0.0.1:6379")
		if err != nil {
			return nil, &device.UnreachableError{Device: dev.Hostname, Err: err}
		}
		c.tunnel = tun
		addr = tun.LocalAddr()
	}

	c.rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   configDBIndex,
	})

	if err := c.rdb.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, &device.UnreachableError{Device: dev.Hostname, Err: err}
	}
	return c, nil
}

// Close releases the Redis connection and any SSH tunnel.
func (c *Client) Close() {
	if c.rdb != nil {
		c.rdb.Close()
	}
	if c.tunnel != nil {
		c.tunnel.Close()
	}
}

// GetAll loads every CONFIG_DB entry as a map keyed "TABLE|key".
// Uses cursor-based SCAN rather than KEYS so the device's Redis is
// never blocked.
func (c *Client) GetAll(ctx context.Context) (map[string]map[string]string, error) {
	keys, err := c.scanKeys(ctx, "*")
	if err != nil {
		return nil, err
	}

	out := make(map[string]map[string]string, len(keys))
	for _, key := range keys {
		vals, err := c.rdb.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		out[key] = vals
	}
	return out, nil
}

// HSet writes fields of one entry.
func (c *Client) HSet(ctx context.Context, key string, fields map[string]string) error {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return c.rdb.HSet(ctx, key, args...).Err()
}

// Del removes entries.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *Client) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := c.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}
