package logger

// 输出格式
const (
	JSONFormat    = "json"
	ConsoleFormat = "console"
)

// RotationConfig 日志轮转配置（lumberjack）
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size" json:"max_size" yaml:"max_size"`          // 单文件最大体积（MB）
	MaxBackups int  `mapstructure:"max_backups" json:"max_backups" yaml:"max_backups"` // 保留的旧文件数量
	MaxAge     int  `mapstructure:"max_age" json:"max_age" yaml:"max_age"`             // 保留天数
	Compress   bool `mapstructure:"compress" json:"compress" yaml:"compress"`          // 是否压缩旧文件
}

// Config 日志配置
type Config struct {
	Level         string         `mapstructure:"level" json:"level" yaml:"level"`                            // debug, info, warn, error
	Format        string         `mapstructure:"format" json:"format" yaml:"format"`                         // json, console
	EnableConsole bool           `mapstructure:"enable_console" json:"enable_console" yaml:"enable_console"` // 控制台输出
	EnableFile    bool           `mapstructure:"enable_file" json:"enable_file" yaml:"enable_file"`          // 文件输出
	OutputPath    string         `mapstructure:"output_path" json:"output_path" yaml:"output_path"`          // 日志文件路径
	Rotation      RotationConfig `mapstructure:"rotation" json:"rotation" yaml:"rotation"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Level:         "info",
		Format:        JSONFormat,
		EnableConsole: true,
		EnableFile:    false,
		OutputPath:    "logs/server.log",
		Rotation: RotationConfig{
			MaxSize:    100,
			MaxBackups: 10,
			MaxAge:     30,
			Compress:   true,
		},
	}
}
