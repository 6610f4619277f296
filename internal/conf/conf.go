package conf

import (
	"encoding/json"
	"fmt"
	"time"
)

// Bootstrap 服务启动配置（对应 configs/config.yaml）
type Bootstrap struct {
	Server *Server `json:"server"`
	Data   *Data   `json:"data"`
	Point  *Point  `json:"point"`
	Cron   *Cron   `json:"cron"`
	Log    *Log    `json:"log"`
}

// Server 传输层配置
type Server struct {
	Http *Server_HTTP `json:"http"`
}

// Server_HTTP HTTP 服务配置
type Server_HTTP struct {
	Network string    `json:"network"`
	Addr    string    `json:"addr"`
	Timeout *Duration `json:"timeout"`
}

// Data 数据层配置
type Data struct {
	// Driver 存储驱动：mysql / sqlite / bolt / memory
	Driver   string         `json:"driver"`
	Database *Data_Database `json:"database"`
	Redis    *Data_Redis    `json:"redis"`
	Bolt     *Data_Bolt     `json:"bolt"`
	Rocketmq *Data_RocketMQ `json:"rocketmq"`
}

// Data_Database 关系型数据库配置
type Data_Database struct {
	Source      string `json:"source"`
	AutoMigrate bool   `json:"auto_migrate"`
}

// Data_Redis Redis 配置（可选，未配置时关闭缓存与命令去重）
type Data_Redis struct {
	Addr         string    `json:"addr"`
	Password     string    `json:"password"`
	DB           int       `json:"db"`
	ReadTimeout  *Duration `json:"read_timeout"`
	WriteTimeout *Duration `json:"write_timeout"`
	CacheTTL     *Duration `json:"cache_ttl"`
	DedupeTTL    *Duration `json:"dedupe_ttl"`
}

// Data_Bolt BoltDB 嵌入式存储配置
type Data_Bolt struct {
	Path string `json:"path"`
}

// Data_RocketMQ RocketMQ 配置
type Data_RocketMQ struct {
	Enabled      bool     `json:"enabled"`
	NameServers  []string `json:"name_servers"`
	GroupName    string   `json:"group_name"`
	EventTopic   string   `json:"event_topic"`
	CommandTopic string   `json:"command_topic"`
	RetryTimes   int32    `json:"retry_times"`
}

// Point 积分业务配置
type Point struct {
	MaxPoint    int64 `json:"max_point"`
	LockQueries *bool `json:"lock_queries"`
	AutoCreate  bool  `json:"auto_create"`
}

// Cron 定时任务配置
type Cron struct {
	ReconcileSpec string    `json:"reconcile_spec"`
	ConfirmDelay  *Duration `json:"confirm_delay"`
	LockExpiry    *Duration `json:"lock_expiry"`
	Timeout       *Duration `json:"timeout"`
}

// Log 日志配置（传给 go-pkg/logger）
type Log struct {
	Level         string `json:"level"`
	Format        string `json:"format"`
	Output        string `json:"output"`
	FilePath      string `json:"file_path"`
	MaxSize       int    `json:"max_size"`
	MaxAge        int    `json:"max_age"`
	MaxBackups    int    `json:"max_backups"`
	Compress      bool   `json:"compress"`
	EnableConsole bool   `json:"enable_console"`
}

// Duration 支持 "500ms" / "5s" 字符串或秒数的时长配置
type Duration struct {
	time.Duration
}

// UnmarshalJSON 解析时长
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value * float64(time.Second))
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration: %s", string(b))
	}
	return nil
}

// MarshalJSON 输出为字符串形式
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// AsDuration 返回 time.Duration，nil 时为 0
func (d *Duration) AsDuration() time.Duration {
	if d == nil {
		return 0
	}
	return d.Duration
}
