package dialer

import (
	"sync"
)

var (
	globalMu     sync.RWMutex
	globalDialer Dialer = NewDefaultDialer()
)

// SetGlobalDialer 替换全局拨号器 (例如配置了全局代理时)
func SetGlobalDialer(d Dialer) {
	if d == nil {
		return
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	globalDialer = d
}

// Get 获取全局拨号器，探测器未显式注入 Dialer 时使用
func Get() Dialer {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalDialer
}
