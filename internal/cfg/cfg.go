package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/taxonomy-backend/pkg/e"
	"github.com/DRSN-tech/taxonomy-backend/pkg/logger"
	"github.com/jimlawless/whereami"
)

const (
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

type Config struct {
	LogMode string
	Http    *HTTPConfig
	Grpc    *GRPCConfig
	Storage *StorageCfg
	Db      *PGDBCfg // nil, если выбран драйвер sqlite
	Redis   *RedisCfg
	Kafka   *KafkaCfg
	Outbox  *OutboxCfg
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	Partitions        int
	ReplicationFactor int
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

type StorageCfg struct {
	Driver     string // postgres | sqlite
	SQLitePath string
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN возвращает строку подключения в формате key=value.
func (c *PGDBCfg) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	CategoryTTL time.Duration
}

type OutboxCfg struct {
	PollInterval time.Duration
	BatchSize    int
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	storage, err := loadStorageCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var db *PGDBCfg
	if storage.Driver == StoragePostgres {
		if db, err = loadPGDBCfg(log); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	env := &envReader{log: log}
	c := &Config{
		LogMode: getEnvOrDefault("LOG_MODE", "dev"),
		Http:    loadHTTPConfig(env),
		Grpc:    loadGRPCConfig(),
		Storage: storage,
		Db:      db,
		Redis:   loadRedisCfg(env),
		Kafka:   kafka,
		Outbox:  loadOutboxCfg(env),
	}
	if env.err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), env.err)
	}

	return c, nil
}

func loadStorageCfg() (*StorageCfg, error) {
	const defaultSQLitePath = "taxonomy.db"

	driver := strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", StoragePostgres))
	if driver != StoragePostgres && driver != StorageSQLite {
		return nil, fmt.Errorf("%w: %s", e.ErrUnknownStorageDriver, driver)
	}

	return &StorageCfg{
		Driver:     driver,
		SQLitePath: getEnvOrDefault("SQLITE_PATH", defaultSQLitePath),
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	brokers := strings.FieldsFunc(getEnv("KAFKA_BROKERS"), func(r rune) bool { return r == ',' })
	if len(brokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}

	topic := getEnv("KAFKA_TOPIC")
	if topic == "" {
		return nil, fmt.Errorf("KAFKA_TOPIC environment variable is required")
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", 3)
	if err != nil {
		return nil, err
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", 1)
	if err != nil {
		return nil, err
	}

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             topic,
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
	}, nil
}

func loadOutboxCfg(env *envReader) *OutboxCfg {
	return &OutboxCfg{
		PollInterval: env.duration("OUTBOX_POLL_INTERVAL", 5*time.Second),
		BatchSize:    env.positiveInt("OUTBOX_BATCH_SIZE", 10),
	}
}

func loadHTTPConfig(env *envReader) *HTTPConfig {
	return &HTTPConfig{
		Port:         getEnvOrDefault("HTTP_PORT", "8080"),
		ReadTimeout:  env.duration("HTTP_READ_TIMEOUT", 5*time.Second),
		WriteTimeout: env.duration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		IdleTimeout:  env.duration("KEEP_ALIVE", 60*time.Second),
	}
}

func loadGRPCConfig() *GRPCConfig {
	return &GRPCConfig{
		Port:        getEnvOrDefault("GRPC_PORT", "8091"),
		NetworkMode: getEnvOrDefault("GRPC_NETWORK_MODE", "tcp"),
	}
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	c := &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
		Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		User:     getEnv("POSTGRES_USER"),
		Password: getEnv("POSTGRES_PASSWORD"),
		DBName:   getEnv("POSTGRES_DB"),
		SSLMode:  getEnvOrDefault("SSL_MODE", "disable"),
	}

	for key, value := range map[string]string{
		"POSTGRES_USER":     c.User,
		"POSTGRES_PASSWORD": c.Password,
		"POSTGRES_DB":       c.DBName,
	} {
		if value == "" {
			err := fmt.Errorf("%s is required", key)
			log.Errorf(err, "missing %s", key)
			return nil, err
		}
	}

	return c, nil
}

func loadRedisCfg(env *envReader) *RedisCfg {
	readTimeout := env.duration("READ_TIMEOUT", 3*time.Second)
	writeTimeout := env.duration("WRITE_TIMEOUT", 3*time.Second)

	return &RedisCfg{
		Addr:        getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          env.integer("REDIS_DB_ID", 0),
		MaxRetries:  env.integer("MAX_RETRIES", 3),
		DialTimeout: env.duration("DIAL_TIMEOUT", 5*time.Second),
		Timeout:     max(readTimeout, writeTimeout),
		CategoryTTL: env.duration("CATEGORY_TTL", 5*time.Minute),
	}
}

// envReader читает числовые переменные окружения и запоминает первую ошибку разбора.
// После первой ошибки возвращает значения по умолчанию.
type envReader struct {
	log logger.Logger
	err error
}

func (r *envReader) duration(key string, defaultValue time.Duration) time.Duration {
	if r.err != nil {
		return defaultValue
	}

	d, err := parseDurationEnv(key, defaultValue)
	r.fail(key, err)
	return d
}

func (r *envReader) integer(key string, defaultValue int) int {
	if r.err != nil {
		return defaultValue
	}

	v, err := parseIntEnv(key, defaultValue)
	r.fail(key, err)
	return v
}

func (r *envReader) positiveInt(key string, defaultValue int) int {
	v := r.integer(key, defaultValue)
	if r.err == nil && v <= 0 {
		r.fail(key, fmt.Errorf("%w: %s must be positive", e.ErrIncorrectEnvVariable, key))
	}
	return v
}

func (r *envReader) fail(key string, err error) {
	if err == nil {
		return
	}
	r.log.Errorf(err, "invalid %s", key)
	r.err = err
}

func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue, fmt.Errorf("%w: %s: %v", e.ErrIncorrectEnvVariable, key, err)
	}

	return d, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, fmt.Errorf("%w: %s", e.ErrIncorrectEnvVariable, key)
	}

	return n, nil
}
