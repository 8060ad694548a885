package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Loader 配置加载器，封装 viper
type Loader struct {
	v *viper.Viper
}

// NewLoader 创建配置加载器
// envPrefix 用于环境变量覆盖，例如 QINGYUN_DATABASE_HOST 覆盖 database.host
func NewLoader(envPrefix string) *Loader {
	v := viper.New()
	if envPrefix != "" {
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}
	return &Loader{v: v}
}

// LoadFile 加载 yaml 配置文件
func (l *Loader) LoadFile(path string) error {
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// Unmarshal 解析整个配置到结构体
func (l *Loader) Unmarshal(out any) error {
	if err := l.v.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// UnmarshalKey 解析指定路径的配置到结构体
func (l *Loader) UnmarshalKey(key string, out any) error {
	if err := l.v.UnmarshalKey(key, out); err != nil {
		return fmt.Errorf("failed to unmarshal config key %s: %w", key, err)
	}
	return nil
}

// SetDefault 设置默认值
func (l *Loader) SetDefault(key string, value any) {
	l.v.SetDefault(key, value)
}

// IsSet 检查配置项是否存在
func (l *Loader) IsSet(key string) bool {
	return l.v.IsSet(key)
}
