package cfg

import (
	"testing"
	"time"

	"github.com/DRSN-tech/taxonomy-backend/pkg/e"
	"github.com/DRSN-tech/taxonomy-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setKafkaEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("KAFKA_TOPIC", "taxonomy-events")
}

func TestLoad_SQLiteSkipsPostgres(t *testing.T) {
	setKafkaEnv(t)
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/tax.db")
	t.Setenv("CATEGORY_TTL", "90s")
	t.Setenv("OUTBOX_BATCH_SIZE", "25")

	c, err := Load(logger.NewNop())
	require.NoError(t, err)

	assert.Nil(t, c.Db)
	assert.Equal(t, StorageSQLite, c.Storage.Driver)
	assert.Equal(t, "/tmp/tax.db", c.Storage.SQLitePath)
	assert.Equal(t, 90*time.Second, c.Redis.CategoryTTL)
	assert.Equal(t, 25, c.Outbox.BatchSize)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "8080", c.Http.Port)
	assert.Equal(t, "8091", c.Grpc.Port)
}

func TestLoad_PostgresRequiresCredentials(t *testing.T) {
	setKafkaEnv(t)
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("POSTGRES_USER", "")

	_, err := Load(logger.NewNop())
	assert.Error(t, err)
}

func TestLoad_PostgresDSN(t *testing.T) {
	setKafkaEnv(t)
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("POSTGRES_USER", "tax")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "taxonomy")
	t.Setenv("POSTGRES_HOST", "db")

	c, err := Load(logger.NewNop())
	require.NoError(t, err)
	require.NotNil(t, c.Db)
	assert.Equal(t, "host=db port=5432 user=tax password=secret dbname=taxonomy sslmode=disable", c.Db.DSN())
}

func TestLoad_UnknownDriver(t *testing.T) {
	setKafkaEnv(t)
	t.Setenv("STORAGE_DRIVER", "mongo")

	_, err := Load(logger.NewNop())
	assert.ErrorIs(t, err, e.ErrUnknownStorageDriver)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"CATEGORY_TTL":         "soon",
		"OUTBOX_POLL_INTERVAL": "5 parsecs",
		"OUTBOX_BATCH_SIZE":    "0",
		"REDIS_DB_ID":          "first",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setKafkaEnv(t)
			t.Setenv("STORAGE_DRIVER", "sqlite")
			t.Setenv(key, value)

			_, err := Load(logger.NewNop())
			assert.ErrorIs(t, err, e.ErrIncorrectEnvVariable)
		})
	}
}

func TestLoad_KafkaRequired(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("KAFKA_BROKERS", "")

	_, err := Load(logger.NewNop())
	assert.Error(t, err)
}
