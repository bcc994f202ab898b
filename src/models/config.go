package models

// MConfig Structure
type MConfig struct {
	Name           string         `yaml:"name"`
	Host           string         `yaml:"host"`
	Port           int            `yaml:"port"`
	LogLevel       string         `yaml:"log_level"`
	APIBase        string         `yaml:"api_base"`
	RequestTimeout int            `yaml:"request_timeout"` // seconds, front end -> backend
	Backend        MBackendConfig `yaml:"backend"`
	Storage        MStorageConfig `yaml:"storage"`
	Network        MNetworkConfig `yaml:"network"`
}

type MBackendConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	GrpcHost               string `yaml:"grpc_host"`
	GrpcPort               int    `yaml:"grpc_port"` // 0 disables the control service
	Workers                int    `yaml:"workers"`
	QueueSize              int    `yaml:"queue_size"`
	MaxRetries             int    `yaml:"max_retries"`
	RetryDelaySeconds      int    `yaml:"retry_delay_seconds"`
	RefreshIntervalSeconds int    `yaml:"refresh_interval_seconds"` // 0 disables
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	Enabled            bool     `yaml:"enabled"`
	Proxies            []string `yaml:"proxies"`
	RequestTimeout     int      `yaml:"timeout"`
	MaxRetries         int      `yaml:"retries"`
	ConcurrentRequests int      `yaml:"concurrent_requests"`
	UserAgent          string   `yaml:"user_agent"`
}
