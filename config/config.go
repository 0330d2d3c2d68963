package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Store       StoreConfig       `mapstructure:"store"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	ETCD        ETCDConfig        `mapstructure:"etcd"`
	Lock        LockConfig        `mapstructure:"lock"`
	Eligibility EligibilityConfig `mapstructure:"eligibility"`
	GraphQL     GraphQLConfig     `mapstructure:"graphql"`
	Log         LogConfig         `mapstructure:"log"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig 持久化配置，driver 取值 mysql / postgres / sqlite / memory
type StoreConfig struct {
	Driver       string `mapstructure:"driver"`
	Master       string `mapstructure:"master"`
	Slave        string `mapstructure:"slave"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	// 数据存储Redis（资格黑名单）
	DataAddress string        `mapstructure:"data_address"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	PoolSize    int           `mapstructure:"pool_size"`
	MaxRetries  int           `mapstructure:"max_retries"`
	Timeout     time.Duration `mapstructure:"timeout"`

	// Redlock使用的Redis节点
	LockAddresses []string `mapstructure:"lock_addresses"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
	Workers int      `mapstructure:"workers"`
}

type ETCDConfig struct {
	Endpoints      []string      `mapstructure:"endpoints"`
	DialTimeout    time.Duration `mapstructure:"dial_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// LockConfig 分布式锁配置，backend 取值 etcd / redis / local
type LockConfig struct {
	Backend    string        `mapstructure:"backend"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"`
}

// EligibilityConfig 投票资格校验配置，mode 取值 cpf / simulated / static
type EligibilityConfig struct {
	Mode         string   `mapstructure:"mode"`
	BlocklistKey string   `mapstructure:"blocklist_key"`
	InvalidRate  float64  `mapstructure:"invalid_rate"`
	UnableRate   float64  `mapstructure:"unable_rate"`
	Ineligible   []string `mapstructure:"ineligible"`
}

type GraphQLConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

// SetDefaults 设置默认配置
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.master", "")
	v.SetDefault("store.slave", "")
	v.SetDefault("store.max_open_conns", 50)
	v.SetDefault("store.max_idle_conns", 10)

	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.timeout", 3*time.Second)

	v.SetDefault("kafka.topic", "agendavote.vote.cast")
	v.SetDefault("kafka.group_id", "agendavote-audit")
	v.SetDefault("kafka.workers", 4)

	v.SetDefault("etcd.dial_timeout", 5*time.Second)
	v.SetDefault("etcd.request_timeout", 3*time.Second)

	v.SetDefault("lock.backend", "local")
	v.SetDefault("lock.timeout", 30*time.Second)
	v.SetDefault("lock.retry_count", 3)

	v.SetDefault("eligibility.mode", "cpf")
	v.SetDefault("eligibility.blocklist_key", "eligibility:blocked")
	v.SetDefault("eligibility.invalid_rate", 0.3)
	v.SetDefault("eligibility.unable_rate", 0.5)

	v.SetDefault("graphql.path", "/graphql")

	v.SetDefault("log.level", "info")

	v.SetDefault("metrics.namespace", "agendavote")
}

// LoadConfig 加载配置文件，configPath 为空时只使用默认值和环境变量
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("AGENDAVOTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return &cfg, nil
}
