package db

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"
)

const driverName = "mysql"

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// Redis は records-changed 通知用（未設定なら通知なしで動く）
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

type SchedulerConfig struct {
	// 日付境界の基準タイムゾーン（IANA名）。空ならサーバーのローカル
	Timezone string `yaml:"timezone"`
	// 安全網ポーリング間隔（秒）。0で無効
	SafetyNetSeconds int `yaml:"safety_net_seconds"`
}

type Config struct {
	Version     string          `yaml:"version"`
	Mode        string          `yaml:"mode"`
	DB          DatabaseConfig  `yaml:"database"`
	Certificate Certs           `yaml:"certificate"`
	Auth        AuthConfig      `yaml:"auth"`
	Redis       RedisConfig     `yaml:"redis"`
	Scheduler   SchedulerConfig `yaml:"scheduler"`
}

func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込み失敗: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("設定ファイルのパース失敗: %w", err)
	}
	if cfg.Redis.Channel == "" {
		cfg.Redis.Channel = "lits:records:changed"
	}
	return &cfg, nil
}

// Location は Scheduler.Timezone を解決する（空ならサーバーのローカル）
func (c *Config) Location() (*time.Location, error) {
	if c.Scheduler.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Scheduler.Timezone)
}

func Connect(c DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&tls=false&timeout=3s&readTimeout=5s&writeTimeout=5s&loc=UTC",
		c.Username, c.Password, c.Host, c.Port, c.DBName)

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("接続準備に失敗: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("DB接続に失敗: %w", err)
	}

	// 接続プール（合算がMySQLの max_connections を超えないよう配分する）
	db.SetMaxOpenConns(80)
	db.SetMaxIdleConns(20)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}
