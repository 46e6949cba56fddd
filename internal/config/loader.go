package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultEnvPrefix 环境变量前缀
const DefaultEnvPrefix = "NEOPORT"

// ConfigLoader 配置加载器
type ConfigLoader struct {
	configPath string
	envPrefix  string
	viper      *viper.Viper
}

// NewConfigLoader 创建配置加载器
// configPath 可以是目录，也可以是具体的配置文件
func NewConfigLoader(configPath, envPrefix string) *ConfigLoader {
	if envPrefix == "" {
		envPrefix = DefaultEnvPrefix
	}

	return &ConfigLoader{
		configPath: configPath,
		envPrefix:  envPrefix,
		viper:      viper.New(),
	}
}

// Viper 底层 viper 实例
func (cl *ConfigLoader) Viper() *viper.Viper {
	return cl.viper
}

// BindFlag 命令行参数覆盖配置项
func (cl *ConfigLoader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("flag for %s is nil", key)
	}
	return cl.viper.BindPFlag(key, flag)
}

// LoadConfig 加载配置
// 找不到配置文件时使用默认值，不算错误
func (cl *ConfigLoader) LoadConfig() (*Config, error) {
	// 设置配置文件类型
	cl.viper.SetConfigType("yaml")

	// 设置环境变量前缀
	cl.viper.SetEnvPrefix(cl.envPrefix)
	cl.viper.AutomaticEnv()
	cl.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 绑定环境变量
	cl.bindEnvVars()

	// 设置默认值
	cl.setDefaults()

	// 加载配置文件
	if err := cl.loadConfigFile(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	return cl.unmarshal()
}

func (cl *ConfigLoader) unmarshal() (*Config, error) {
	var config Config
	if err := cl.viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// loadConfigFile 加载配置文件
func (cl *ConfigLoader) loadConfigFile() error {
	if cl.configPath == "" {
		// 尝试从环境变量获取配置文件路径
		cl.configPath = os.Getenv(cl.envPrefix + "_CONFIG_PATH")
	}

	// 显式指定了文件
	if cl.configPath != "" {
		if info, err := os.Stat(cl.configPath); err == nil && !info.IsDir() {
			cl.viper.SetConfigFile(cl.configPath)
			return cl.viper.ReadInConfig()
		}
		cl.viper.AddConfigPath(cl.configPath)
	}

	// 设置配置文件搜索路径
	cl.viper.AddConfigPath("./configs")
	cl.viper.AddConfigPath(".")

	// 先找环境特定的配置文件 config.{env}.yaml，再找 config.yaml
	cl.viper.SetConfigName(fmt.Sprintf("config.%s", cl.getEnvironment()))
	err := cl.viper.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) {
		return err
	}

	cl.viper.SetConfigName("config")
	if err := cl.viper.ReadInConfig(); err != nil {
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// getEnvironment 获取运行环境
func (cl *ConfigLoader) getEnvironment() string {
	env := os.Getenv(cl.envPrefix + "_ENV")
	if env == "" {
		env = os.Getenv("GO_ENV")
	}
	if env == "" {
		env = "development"
	}
	return env
}

// bindEnvVars 绑定环境变量
func (cl *ConfigLoader) bindEnvVars() {
	p := cl.envPrefix

	// 日志配置
	_ = cl.viper.BindEnv("log.level", p+"_LOG_LEVEL")
	_ = cl.viper.BindEnv("log.format", p+"_LOG_FORMAT")
	_ = cl.viper.BindEnv("log.output", p+"_LOG_OUTPUT")
	_ = cl.viper.BindEnv("log.file_path", p+"_LOG_FILE_PATH")

	// 扫描配置
	_ = cl.viper.BindEnv("scan.concurrency", p+"_SCAN_CONCURRENCY")
	_ = cl.viper.BindEnv("scan.timeout", p+"_SCAN_TIMEOUT")
	_ = cl.viper.BindEnv("scan.grace", p+"_SCAN_GRACE")
	_ = cl.viper.BindEnv("scan.adaptive", p+"_SCAN_ADAPTIVE")
	_ = cl.viper.BindEnv("scan.proxy", p+"_SCAN_PROXY", "ALL_PROXY")

	// Server配置
	_ = cl.viper.BindEnv("server.host", p+"_SERVER_HOST")
	_ = cl.viper.BindEnv("server.port", p+"_SERVER_PORT")
	_ = cl.viper.BindEnv("server.mode", p+"_SERVER_MODE")
}

// setDefaults 设置默认值
func (cl *ConfigLoader) setDefaults() {
	// 日志默认值
	cl.viper.SetDefault("log.level", "info")
	cl.viper.SetDefault("log.format", "text")
	cl.viper.SetDefault("log.output", "stderr")
	cl.viper.SetDefault("log.file_path", "./logs/neoport.log")
	cl.viper.SetDefault("log.max_size", 100)
	cl.viper.SetDefault("log.max_backups", 3)
	cl.viper.SetDefault("log.max_age", 28)
	cl.viper.SetDefault("log.compress", true)
	cl.viper.SetDefault("log.caller", false)

	// 扫描默认值
	cl.viper.SetDefault("scan.concurrency", 10)
	cl.viper.SetDefault("scan.timeout", "1s")
	cl.viper.SetDefault("scan.grace", "1s")
	cl.viper.SetDefault("scan.adaptive", false)
	cl.viper.SetDefault("scan.proxy", "")

	// 输出默认值
	cl.viper.SetDefault("output.show_all", false)
	cl.viper.SetDefault("output.no_banner", false)
	cl.viper.SetDefault("output.no_progress", false)

	// Server默认值
	cl.viper.SetDefault("server.host", "127.0.0.1")
	cl.viper.SetDefault("server.port", 8080)
	cl.viper.SetDefault("server.mode", "release")
	cl.viper.SetDefault("server.read_timeout", "30s")
	cl.viper.SetDefault("server.write_timeout", "5m")
	cl.viper.SetDefault("server.max_ports", 65535)
}

// GetConfigPath 实际使用的配置文件，未找到时为空
func (cl *ConfigLoader) GetConfigPath() string {
	return cl.viper.ConfigFileUsed()
}

// LoadConfigFromFile 从指定文件加载配置
func LoadConfigFromFile(configFile string) (*Config, error) {
	loader := NewConfigLoader(configFile, DefaultEnvPrefix)
	return loader.LoadConfig()
}
