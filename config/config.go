package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 应用配置结构体
type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Password PasswordConfig `yaml:"password"`
	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
	Cache    CacheConfig    `yaml:"cache"`
	External ExternalConfig `yaml:"external"`
}

// AppConfig 应用基本信息
type AppConfig struct {
	Name    string `yaml:"name"`    // 应用名称
	Version string `yaml:"version"` // 应用版本
	Debug   bool   `yaml:"debug"`   // 调试模式
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port         string        `yaml:"port"`         // 服务器监听端口
	ReadTimeout  time.Duration `yaml:"readTimeout"`  // 读取超时时间
	WriteTimeout time.Duration `yaml:"writeTimeout"` // 写入超时时间
	IdleTimeout  time.Duration `yaml:"idleTimeout"`  // 空闲超时时间
}

// DatabaseConfig 数据库配置
// Driver 支持 mysql / postgres / sqlite；URL 非空时优先于分项配置
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`   // 数据库驱动类型
	URL      string `yaml:"url"`      // 连接串，例如 sqlite:///./data/paperly.db
	Host     string `yaml:"host"`     // 数据库主机地址
	Port     int    `yaml:"port"`     // 数据库端口
	Username string `yaml:"username"` // 数据库用户名
	Password string `yaml:"password"` // 数据库密码
	Database string `yaml:"database"` // 数据库名称（sqlite 时为文件路径）
	Charset  string `yaml:"charset"`  // 字符集
	SSLMode  string `yaml:"sslMode"`  // postgres sslmode
	MaxIdle  int    `yaml:"maxIdle"`  // 最大空闲连接数
	MaxOpen  int    `yaml:"maxOpen"`  // 最大打开连接数
	LogSQL   bool   `yaml:"logSQL"`   // 是否打印SQL
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret     string        `yaml:"secret"`     // JWT密钥
	Algorithm  string        `yaml:"algorithm"`  // 签名算法 HS256/HS384/HS512
	ExpireTime time.Duration `yaml:"expireTime"` // JWT过期时间
	Issuer     string        `yaml:"issuer"`     // JWT签发者
}

// PasswordConfig 密码哈希配置
// Scheme 在启动时选定一次：bcrypt（默认）或 pbkdf2
type PasswordConfig struct {
	Scheme     string `yaml:"scheme"`     // 哈希方案
	Cost       int    `yaml:"cost"`       // bcrypt cost
	Iterations int    `yaml:"iterations"` // pbkdf2 迭代次数
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`      // 日志级别
	Filename   string `yaml:"filename"`   // 日志文件名
	MaxSize    int    `yaml:"maxSize"`    // 单个日志文件最大大小(MB)
	MaxBackups int    `yaml:"maxBackups"` // 最大备份文件数
	MaxAge     int    `yaml:"maxAge"`     // 最大保存天数
	Compress   bool   `yaml:"compress"`   // 是否压缩
	Console    bool   `yaml:"console"`    // 同时输出到控制台
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `yaml:"host"`     // Redis主机地址
	Port     int    `yaml:"port"`     // Redis端口
	Password string `yaml:"password"` // Redis密码
	DB       int    `yaml:"db"`       // Redis数据库编号
}

// CacheConfig 搜索结果缓存配置
// Driver: memory（无上限、无过期）/ lru / redis / none
type CacheConfig struct {
	Driver        string        `yaml:"driver"`        // 缓存实现
	Size          int           `yaml:"size"`          // lru 最大条目数
	TTL           time.Duration `yaml:"ttl"`           // lru/redis 过期时间，0 表示不过期（仅redis）
	FlushSchedule string        `yaml:"flushSchedule"` // cron 表达式，定时清空缓存，空则不启用
}

// ExternalConfig 外部仓库模拟配置
type ExternalConfig struct {
	MockEnabled bool `yaml:"mockEnabled"` // 是否启用外部API模拟
}

// LoadConfig 加载配置（混合方式：.env + YAML文件 + 环境变量）
func LoadConfig() *Config {
	return LoadConfigFrom("config/config.yaml")
}

// LoadConfigFrom 从指定YAML文件加载配置
func LoadConfigFrom(filePath string) *Config {
	// 0. 加载 .env（不存在则忽略）
	_ = godotenv.Load()

	// 1. 首先从YAML文件加载默认配置
	config := loadFromYAML(filePath)

	// 2. 用环境变量覆盖配置（环境变量优先级更高）
	overrideWithEnvVars(config)

	return config
}

// loadFromYAML 从YAML文件加载配置
func loadFromYAML(filePath string) *Config {
	data, err := os.ReadFile(filePath)
	if err != nil {
		// 如果文件不存在，返回默认配置
		return getDefaultConfig()
	}

	// 在默认配置之上解析，未出现的字段保持默认值
	config := getDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return getDefaultConfig()
	}

	return config
}

// overrideWithEnvVars 用环境变量覆盖配置
func overrideWithEnvVars(config *Config) {
	// 应用配置
	if name := getEnv("APP_NAME", ""); name != "" {
		config.App.Name = name
	}
	if version := getEnv("APP_VERSION", ""); version != "" {
		config.App.Version = version
	}
	config.App.Debug = getEnvBool("DEBUG", config.App.Debug)

	// 服务器配置
	if port := getEnv("SERVER_PORT", ""); port != "" {
		config.Server.Port = port
	}
	if timeout := getEnvDuration("SERVER_READ_TIMEOUT", 0); timeout > 0 {
		config.Server.ReadTimeout = timeout
	}
	if timeout := getEnvDuration("SERVER_WRITE_TIMEOUT", 0); timeout > 0 {
		config.Server.WriteTimeout = timeout
	}
	if timeout := getEnvDuration("SERVER_IDLE_TIMEOUT", 0); timeout > 0 {
		config.Server.IdleTimeout = timeout
	}

	// 数据库配置
	if url := getEnv("DATABASE_URL", ""); url != "" {
		config.Database.URL = url
	}
	if driver := getEnv("DB_DRIVER", ""); driver != "" {
		config.Database.Driver = driver
	}
	if host := getEnv("DB_HOST", ""); host != "" {
		config.Database.Host = host
	}
	if port := getEnvInt("DB_PORT", 0); port > 0 {
		config.Database.Port = port
	}
	if username := getEnv("DB_USERNAME", ""); username != "" {
		config.Database.Username = username
	}
	if password := getEnv("DB_PASSWORD", ""); password != "" {
		config.Database.Password = password
	}
	if database := getEnv("DB_DATABASE", ""); database != "" {
		config.Database.Database = database
	}
	if charset := getEnv("DB_CHARSET", ""); charset != "" {
		config.Database.Charset = charset
	}
	if maxIdle := getEnvInt("DB_MAX_IDLE", 0); maxIdle > 0 {
		config.Database.MaxIdle = maxIdle
	}
	if maxOpen := getEnvInt("DB_MAX_OPEN", 0); maxOpen > 0 {
		config.Database.MaxOpen = maxOpen
	}

	// JWT配置（JWT_SECRET_KEY 与 JWT_SECRET 等价）
	if secret := getEnv("JWT_SECRET_KEY", getEnv("JWT_SECRET", "")); secret != "" {
		config.JWT.Secret = secret
	}
	if alg := getEnv("JWT_ALGORITHM", ""); alg != "" {
		config.JWT.Algorithm = alg
	}
	if minutes := getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 0); minutes > 0 {
		config.JWT.ExpireTime = time.Duration(minutes) * time.Minute
	}
	if expireTime := getEnvDuration("JWT_EXPIRE_TIME", 0); expireTime > 0 {
		config.JWT.ExpireTime = expireTime
	}
	if issuer := getEnv("JWT_ISSUER", ""); issuer != "" {
		config.JWT.Issuer = issuer
	}

	// 密码哈希配置
	if scheme := getEnv("PASSWORD_SCHEME", ""); scheme != "" {
		config.Password.Scheme = scheme
	}
	if cost := getEnvInt("PASSWORD_BCRYPT_COST", 0); cost > 0 {
		config.Password.Cost = cost
	}
	if iterations := getEnvInt("PASSWORD_PBKDF2_ITERATIONS", 0); iterations > 0 {
		config.Password.Iterations = iterations
	}

	// 日志配置
	if level := getEnv("LOG_LEVEL", ""); level != "" {
		config.Log.Level = level
	}
	if filename := getEnv("LOG_FILENAME", ""); filename != "" {
		config.Log.Filename = filename
	}
	if maxSize := getEnvInt("LOG_MAX_SIZE", 0); maxSize > 0 {
		config.Log.MaxSize = maxSize
	}
	if maxBackups := getEnvInt("LOG_MAX_BACKUPS", 0); maxBackups > 0 {
		config.Log.MaxBackups = maxBackups
	}
	if maxAge := getEnvInt("LOG_MAX_AGE", 0); maxAge > 0 {
		config.Log.MaxAge = maxAge
	}
	config.Log.Console = getEnvBool("LOG_CONSOLE", config.Log.Console)

	// Redis配置
	if host := getEnv("REDIS_HOST", ""); host != "" {
		config.Redis.Host = host
	}
	if port := getEnvInt("REDIS_PORT", 0); port > 0 {
		config.Redis.Port = port
	}
	if password := getEnv("REDIS_PASSWORD", ""); password != "" {
		config.Redis.Password = password
	}
	if db := getEnvInt("REDIS_DB", -1); db >= 0 {
		config.Redis.DB = db
	}

	// 缓存配置
	if driver := getEnv("CACHE_DRIVER", ""); driver != "" {
		config.Cache.Driver = driver
	}
	if size := getEnvInt("CACHE_SIZE", 0); size > 0 {
		config.Cache.Size = size
	}
	if ttl := getEnvDuration("CACHE_TTL", 0); ttl > 0 {
		config.Cache.TTL = ttl
	}
	if schedule := getEnv("CACHE_FLUSH_SCHEDULE", ""); schedule != "" {
		config.Cache.FlushSchedule = schedule
	}

	// 外部API模拟
	config.External.MockEnabled = getEnvBool("MOCK_ENABLED", config.External.MockEnabled)
}

// getDefaultConfig 获取默认配置
func getDefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "Paperly UTEC",
			Version: "1.0.0",
			Debug:   false,
		},
		Server: ServerConfig{
			Port:         "8000",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:   "sqlite",
			Host:     "localhost",
			Port:     3306,
			Username: "paperly",
			Database: "data/paperly.db",
			Charset:  "utf8mb4",
			SSLMode:  "disable",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		JWT: JWTConfig{
			Secret:     "fallback-secret-key",
			Algorithm:  "HS256",
			ExpireTime: 30 * time.Minute,
			Issuer:     "paperly",
		},
		Password: PasswordConfig{
			Scheme:     "bcrypt",
			Cost:       10,
			Iterations: 100000,
		},
		Log: LogConfig{
			Level:      "info",
			Filename:   "logs/app.log",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
			Console:    true,
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			Password: "",
			DB:       0,
		},
		Cache: CacheConfig{
			Driver: "memory",
			Size:   1024,
			TTL:    10 * time.Minute,
		},
		External: ExternalConfig{
			MockEnabled: true,
		},
	}
}

// ParseDatabaseURL 解析 DATABASE_URL，返回驱动名与驱动可用的DSN
//
//	sqlite:///./data/paperly.db          -> sqlite, ./data/paperly.db
//	postgres://u:p@host:5432/db          -> postgres, 原样
//	mysql://u:p@tcp(host:3306)/db?x=y    -> mysql, u:p@tcp(host:3306)/db?x=y
func ParseDatabaseURL(url string) (driver, dsn string, err error) {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return "", "", fmt.Errorf("invalid database url %q", url)
	}
	switch strings.ToLower(scheme) {
	case "sqlite", "sqlite3":
		// sqlite:///relative.db 与 sqlite:////abs/path.db 两种写法
		path := strings.TrimPrefix(rest, "/")
		if path == "" {
			return "", "", fmt.Errorf("empty sqlite path in %q", url)
		}
		return "sqlite", path, nil
	case "postgres", "postgresql":
		return "postgres", url, nil
	case "mysql":
		if rest == "" {
			return "", "", fmt.Errorf("empty mysql dsn in %q", url)
		}
		return "mysql", rest, nil
	default:
		return "", "", fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

// 辅助函数：获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// 辅助函数：获取整数环境变量
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// 辅助函数：获取布尔环境变量
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// 辅助函数：获取时间环境变量
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
