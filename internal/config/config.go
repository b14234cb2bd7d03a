package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServerConfig 定义 HTTP 服务器的监听配置参数
type ServerConfig struct {
	Host string // 监听地址，默认 "0.0.0.0"
	Port int    // 监听端口，默认 8001
}

// CORSConfig 定义跨域资源共享 (CORS) 配置
type CORSConfig struct {
	AllowedOrigins []string // 允许的来源列表，通常为前端开发服务器地址
}

// DatasetConfig 定义不可变数据集（用户/邮件/提示词）的加载配置
type DatasetConfig struct {
	Path string // 数据集 JSON 文件路径，默认 "./mock_data.json"
}

// GeminiConfig 定义外部文本生成服务的调用配置
type GeminiConfig struct {
	APIKey            string        // Gemini API 密钥
	Model             string        // 模型名称，默认 "gemini-2.5-flash"
	BaseURL           string        // API 基础地址，可指向代理或测试桩
	Timeout           time.Duration // 单次模型调用超时，超时归类为模型失败
	RequestsPerMinute int           // 客户端限速，防止触发配额错误
}

// LogConfig 定义日志系统配置
type LogConfig struct {
	Level       string // 日志级别: debug, info, warn, error
	Development bool   // 开发模式: 启用彩色输出和详细堆栈信息
	File        string // 日志文件路径，非空时启用轮转输出，为空时仅输出到标准输出
}

// Config 是系统核心配置的根结构体，包含所有子系统的配置
type Config struct {
	Server  ServerConfig
	CORS    CORSConfig
	Dataset DatasetConfig
	Gemini  GeminiConfig
	Log     LogConfig
}

// Load 从环境变量和 .env 文件加载系统配置
//
// 配置加载优先级（从高到低）：
//  1. 系统环境变量（最高优先级）
//  2. .env 文件（如果存在）
//  3. 默认值
//
// 环境变量前缀: EMAILAGENT_
// 例如: EMAILAGENT_SERVER_PORT, EMAILAGENT_GEMINI_API_KEY
//
// 兼容性：无前缀的 GEMINI_API_KEY 也被接受，与原有部署脚本保持一致。
func Load() (*Config, error) {
	loadEnvFile()

	viper.SetEnvPrefix("emailagent")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8001)
	viper.SetDefault("cors.allowed_origins", "http://localhost:3000,http://localhost:3001")
	viper.SetDefault("dataset.path", "./mock_data.json")
	viper.SetDefault("gemini.api_key", "")
	viper.SetDefault("gemini.model", "gemini-2.5-flash")
	viper.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	viper.SetDefault("gemini.timeout", "30s")
	viper.SetDefault("gemini.requests_per_minute", 60)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.development", false)
	viper.SetDefault("log.file", "")

	corsOrigins := parseList(viper.GetString("cors.allowed_origins"))
	if len(corsOrigins) == 0 {
		return nil, fmt.Errorf("cors.allowed_origins must not be empty")
	}

	timeout, err := time.ParseDuration(viper.GetString("gemini.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid gemini.timeout: %w", err)
	}

	apiKey := viper.GetString("gemini.api_key")
	if apiKey == "" {
		// 原有部署脚本使用无前缀的 GEMINI_API_KEY
		apiKey = os.Getenv("GEMINI_API_KEY")
	}

	rpm := viper.GetInt("gemini.requests_per_minute")
	if rpm <= 0 {
		rpm = 60
	}

	datasetPath := viper.GetString("dataset.path")
	if datasetPath == "" {
		return nil, fmt.Errorf("dataset.path must not be empty")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("server.host"),
			Port: viper.GetInt("server.port"),
		},
		CORS: CORSConfig{
			AllowedOrigins: corsOrigins,
		},
		Dataset: DatasetConfig{
			Path: datasetPath,
		},
		Gemini: GeminiConfig{
			APIKey:            apiKey,
			Model:             viper.GetString("gemini.model"),
			BaseURL:           strings.TrimRight(viper.GetString("gemini.base_url"), "/"),
			Timeout:           timeout,
			RequestsPerMinute: rpm,
		},
		Log: LogConfig{
			Level:       viper.GetString("log.level"),
			Development: viper.GetBool("log.development"),
			File:        viper.GetString("log.file"),
		},
	}

	return cfg, nil
}

// parseList 将逗号分隔的字符串解析为字符串切片，已去除空白字符
func parseList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// loadEnvFile 尝试加载 .env 文件
//
// 加载顺序：
//  1. 当前目录的 .env
//  2. 父目录的 .env（用于从子目录运行的情况）
//
// 文件不存在时静默失败，已存在的环境变量不会被覆盖。
func loadEnvFile() {
	if err := godotenv.Load(".env"); err == nil {
		return
	}

	parentEnv := filepath.Join("..", ".env")
	if _, err := os.Stat(parentEnv); err == nil {
		_ = godotenv.Load(parentEnv)
	}
}
