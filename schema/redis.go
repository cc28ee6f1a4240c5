package schema

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

// RedisStorage stores schema records in a single redis hash per namespace, keyed by component name.
type RedisStorage struct {
	client    *redis.Client
	namespace string
}

var _ Storage = (*RedisStorage)(nil)

func NewRedisStorage(client *redis.Client, namespace string) *RedisStorage {
	return &RedisStorage{client: client, namespace: namespace}
}

func (r *RedisStorage) GetSchema(name string) (Record, error) {
	ctx := context.Background()
	bz, err := r.client.HGet(ctx, r.key(), name).Bytes()
	if eris.Is(err, redis.Nil) {
		return Record{}, eris.Wrapf(ErrNoSchemaFound, "component %s", name)
	} else if err != nil {
		return Record{}, eris.Wrap(err, "failed to get schema")
	}

	var record Record
	if err := json.Unmarshal(bz, &record); err != nil {
		return Record{}, eris.Wrapf(err, "failed to decode schema of component %s", name)
	}
	return record, nil
}

func (r *RedisStorage) SetSchema(record Record) error {
	ctx := context.Background()
	bz, err := json.Marshal(record)
	if err != nil {
		return eris.Wrap(err, "failed to encode schema")
	}
	return eris.Wrap(r.client.HSet(ctx, r.key(), record.Name, bz).Err(), "failed to set schema")
}

func (r *RedisStorage) key() string {
	return r.namespace + ":component_schemas"
}
