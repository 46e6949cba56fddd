package config

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ConfigChangeCallback 配置变更回调函数
type ConfigChangeCallback func(oldConfig, newConfig *Config) error

// ErrorCallback 重载失败时的回调
type ErrorCallback func(err error)

// Watch 监听当前使用的配置文件，变更后重新解析并回调
// 必须在 LoadConfig 之后调用；没有使用配置文件时返回 false
//
// 注意事项：
// - 编辑器保存时可能连续触发多次写事件，reloadDelay 内只重载一次
// - 新配置校验失败时保留旧配置，错误交给 onError
func (cl *ConfigLoader) Watch(current *Config, onChange ConfigChangeCallback, onError ErrorCallback) bool {
	if cl.viper.ConfigFileUsed() == "" {
		return false
	}

	const reloadDelay = 500 * time.Millisecond
	var (
		mu         sync.Mutex
		lastReload time.Time
		config     = current
	)

	cl.viper.OnConfigChange(func(event fsnotify.Event) {
		// 只处理写入和创建事件
		if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
			return
		}

		mu.Lock()
		defer mu.Unlock()

		now := time.Now()
		if now.Sub(lastReload) < reloadDelay {
			return
		}
		lastReload = now

		newConfig, err := cl.unmarshal()
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}

		if onChange != nil {
			if err := onChange(config, newConfig); err != nil {
				if onError != nil {
					onError(err)
				}
				return
			}
		}
		config = newConfig
	})
	cl.viper.WatchConfig()
	return true
}
