package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server          ServerConfig          `mapstructure:"server"`
	Database        DatabaseConfig        `mapstructure:"database"`
	Redis           RedisConfig           `mapstructure:"redis"`
	Kafka           KafkaConfig           `mapstructure:"kafka"`
	JWT             JWTConfig             `mapstructure:"jwt"`
	Log             LogConfig             `mapstructure:"log"`
	Minio           MinioConfig           `mapstructure:"minio"`
	Provider        ProviderConfig        `mapstructure:"provider"`
	Batch           BatchConfig           `mapstructure:"batch"`
	Poller          PollerConfig          `mapstructure:"poller"`
	Etcd            EtcdConfig            `mapstructure:"etcd"`
	ServiceRegistry ServiceRegistryConfig `mapstructure:"service_registry"`
	Observability   ObservabilityConfig   `mapstructure:"observability"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	Charset         string        `mapstructure:"charset"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	EnableTLS    bool          `mapstructure:"enable_tls"`
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	BootstrapServers []string          `mapstructure:"bootstrap_servers"`
	ClientID         string            `mapstructure:"client_id"`
	GroupID          string            `mapstructure:"group_id"`
	Enabled          bool              `mapstructure:"enabled"`
	Topics           KafkaTopicsConfig `mapstructure:"topics"`

	// 暂时性处理失败在原地重试，退避从 RetryBackoff 翻倍到 MaxRetryBackoff
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
	MaxRetryBackoff time.Duration `mapstructure:"max_retry_backoff"`

	// MaxProcessAttempts 为0时一直重试到成功或停止
	MaxProcessAttempts int `mapstructure:"max_process_attempts"`
}

type KafkaTopicsConfig struct {
	ProviderResults string `mapstructure:"provider_results"`
	LifecycleEvents string `mapstructure:"lifecycle_events"`
}

// JWTConfig JWT配置，只做校验，不负责签发
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// MinioConfig MinIO配置，用于归档批量任务报表
type MinioConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
	ReportPrefix    string `mapstructure:"report_prefix"`
}

// ProviderConfig 外部视频生成与发布服务配置
type ProviderConfig struct {
	Timeout     time.Duration        `mapstructure:"timeout"`
	CallbackURL string               `mapstructure:"callback_url"`
	Avatar      ProviderEndpoint     `mapstructure:"avatar"`
	Text2Video  ProviderEndpoint     `mapstructure:"text2video"`
	TikTok      TikTokProviderConfig `mapstructure:"tiktok"`
}

// ProviderEndpoint 单个生成服务的访问参数
type ProviderEndpoint struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	Concurrency int    `mapstructure:"concurrency"`
}

// TikTokProviderConfig TikTok发布接口配置
type TikTokProviderConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	PrivacyLevel string `mapstructure:"privacy_level"`
}

// BatchConfig 批量任务配置
type BatchConfig struct {
	MaxItems         int           `mapstructure:"max_items"`
	StrictCompletion bool          `mapstructure:"strict_completion"`
	LockTTL          time.Duration `mapstructure:"lock_ttl"`
}

// PollerConfig 外部任务轮询配置
type PollerConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Interval          time.Duration `mapstructure:"interval"`
	BatchSize         int           `mapstructure:"batch_size"`
	GenerationTimeout time.Duration `mapstructure:"generation_timeout"`
	PublishTimeout    time.Duration `mapstructure:"publish_timeout"`
}

// EtcdConfig etcd连接配置
type EtcdConfig struct {
	Endpoints   []string      `mapstructure:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
}

// ServiceRegistryConfig registration configuration.
type ServiceRegistryConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	ServiceName  string        `mapstructure:"service_name"`
	ServiceID    string        `mapstructure:"service_id"`
	RegisterHost string        `mapstructure:"register_host"`
	TTL          time.Duration `mapstructure:"ttl"`
}

// ObservabilityConfig 性能剖析配置
type ObservabilityConfig struct {
	PyroscopeEnabled bool   `mapstructure:"pyroscope_enabled"`
	PyroscopeAddress string `mapstructure:"pyroscope_address"`
}

var (
	globalConfig *Config
	globalMu     sync.RWMutex
)

// SetGlobalConfig 设置全局配置
func SetGlobalConfig(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = cfg
}

// GetGlobalConfig 获取全局配置
func GetGlobalConfig() *Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalConfig
}

// Load 加载配置
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetDefault("service_registry.enabled", false)
	v.SetDefault("service_registry.service_name", "videogen-service")
	v.SetDefault("kafka.enabled", true)
	v.SetDefault("kafka.client_id", "videogen-service")
	v.SetDefault("kafka.group_id", "videogen-service-group")
	v.SetDefault("kafka.bootstrap_servers", []string{"localhost:29092"})
	v.SetDefault("kafka.topics.provider_results", "provider.results")
	v.SetDefault("kafka.topics.lifecycle_events", "video.lifecycle")
	v.SetDefault("kafka.retry_backoff", "500ms")
	v.SetDefault("kafka.max_retry_backoff", "30s")
	v.SetDefault("redis.enabled", true)
	v.SetDefault("poller.enabled", true)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("batch.strict_completion", false)
	v.SetDefault("batch.max_items", 500)

	// 设置环境变量前缀
	v.SetEnvPrefix("GO_VIDEO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.normalize()

	return &config, nil
}

// normalize 补全配置的默认值
func (c *Config) normalize() {
	if c.Server.Port == 0 {
		c.Server.Port = 8085
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "debug"
	}
	if c.Database.Charset == "" {
		c.Database.Charset = "utf8mb4"
	}

	if c.Provider.Timeout <= 0 {
		c.Provider.Timeout = 30 * time.Second
	}
	if c.Provider.Avatar.Concurrency <= 0 {
		c.Provider.Avatar.Concurrency = 3
	}
	if c.Provider.Text2Video.Concurrency <= 0 {
		c.Provider.Text2Video.Concurrency = 2
	}
	if c.Provider.TikTok.BaseURL == "" {
		c.Provider.TikTok.BaseURL = "https://open.tiktokapis.com"
	}
	if c.Provider.TikTok.PrivacyLevel == "" {
		c.Provider.TikTok.PrivacyLevel = "SELF_ONLY"
	}

	if c.Batch.MaxItems <= 0 {
		c.Batch.MaxItems = 500
	}
	if c.Batch.LockTTL <= 0 {
		c.Batch.LockTTL = 30 * time.Second
	}

	if c.Poller.Interval <= 0 {
		c.Poller.Interval = 15 * time.Second
	}
	if c.Poller.BatchSize <= 0 {
		c.Poller.BatchSize = 50
	}
	if c.Poller.GenerationTimeout <= 0 {
		c.Poller.GenerationTimeout = 30 * time.Minute
	}
	if c.Poller.PublishTimeout <= 0 {
		c.Poller.PublishTimeout = 15 * time.Minute
	}

	if c.Minio.ReportPrefix == "" {
		c.Minio.ReportPrefix = "batch-reports"
	}
	if c.Etcd.DialTimeout <= 0 {
		c.Etcd.DialTimeout = 5 * time.Second
	}
	if c.ServiceRegistry.TTL == 0 {
		c.ServiceRegistry.TTL = 30 * time.Second
	}
	if len(c.Kafka.BootstrapServers) == 0 {
		c.Kafka.BootstrapServers = []string{"localhost:29092"}
	}
	if c.Kafka.ClientID == "" {
		c.Kafka.ClientID = "videogen-service"
	}
	if c.Kafka.RetryBackoff <= 0 {
		c.Kafka.RetryBackoff = 500 * time.Millisecond
	}
	if c.Kafka.MaxRetryBackoff < c.Kafka.RetryBackoff {
		c.Kafka.MaxRetryBackoff = 30 * time.Second
	}
}

// ConcurrencyFor 返回指定生成服务类型的并发上限
func (c *ProviderConfig) ConcurrencyFor(providerType string) int {
	switch providerType {
	case "avatar":
		return c.Avatar.Concurrency
	case "text2video":
		return c.Text2Video.Concurrency
	default:
		return 1
	}
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database, c.Charset)
}

// GetRedisAddr 获取Redis地址
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
