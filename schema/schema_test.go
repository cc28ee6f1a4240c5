package schema_test

import (
	"reflect"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/argus-labs/ecsfilter/schema"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type health struct {
	Value int `json:"value"`
}

type healthV2 struct {
	Value  int `json:"value"`
	Shield int `json:"shield"`
}

func newRedisStorage(t *testing.T) *schema.RedisStorage {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return schema.NewRedisStorage(client, "test")
}

func TestStorage(t *testing.T) {
	t.Parallel()

	storages := map[string]func(t *testing.T) schema.Storage{
		"memory": func(*testing.T) schema.Storage { return schema.NewMemoryStorage() },
		"redis":  func(t *testing.T) schema.Storage { return newRedisStorage(t) },
	}

	for name, newStorage := range storages {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s := newStorage(t)

			_, err := s.GetSchema("health")
			require.Error(t, err)
			assert.True(t, eris.Is(err, schema.ErrNoSchemaFound))

			record, err := schema.Reflect("health", "dense", reflect.TypeFor[health]())
			require.NoError(t, err)
			require.NoError(t, s.SetSchema(record))

			got, err := s.GetSchema("health")
			require.NoError(t, err)
			assert.Equal(t, record.Name, got.Name)
			assert.Equal(t, record.Storage, got.Storage)
			assert.JSONEq(t, string(record.Schema), string(got.Schema))
		})
	}
}

func TestReconcile(t *testing.T) {
	t.Parallel()

	dense, err := schema.Reflect("health", "dense", reflect.TypeFor[health]())
	require.NoError(t, err)
	sparse, err := schema.Reflect("health", "sparse", reflect.TypeFor[health]())
	require.NoError(t, err)
	changed, err := schema.Reflect("health", "dense", reflect.TypeFor[healthV2]())
	require.NoError(t, err)

	tests := []struct {
		name    string
		next    schema.Record
		wantErr error
	}{
		{name: "same record", next: dense},
		{name: "storage type changed", next: sparse, wantErr: schema.ErrStorageMismatch},
		{name: "fields changed", next: changed, wantErr: schema.ErrSchemaMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newRedisStorage(t)

			require.NoError(t, schema.Reconcile(s, dense))
			stored, err := s.GetSchema("health")
			require.NoError(t, err)
			assert.Equal(t, "dense", stored.Storage)

			err = schema.Reconcile(s, tt.next)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, eris.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
		})
	}
}
