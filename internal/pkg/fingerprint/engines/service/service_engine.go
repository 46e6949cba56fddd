package service

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultProtocol NameFor 未指定协议时使用
const DefaultProtocol = "tcp"

//go:embed services.yaml
var builtinTable []byte

// ServiceEngine 端口 -> 服务名 的本地查表引擎
// 只做本地查表，不访问网络，不做 DNS；构造完成后只读，可并发使用
type ServiceEngine struct {
	table map[string]map[int]string // proto -> port -> name
}

// NewServiceEngine 加载内置表，再按顺序叠加用户提供的表文件
// 表文件格式与内置 services.yaml 相同，同端口后加载的覆盖先加载的
func NewServiceEngine(overlays ...string) (*ServiceEngine, error) {
	table, err := parseTable(builtinTable)
	if err != nil {
		return nil, fmt.Errorf("failed to parse builtin service table: %w", err)
	}

	for _, path := range overlays {
		if path == "" {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read service table %s: %w", path, err)
		}
		extra, err := parseTable(content)
		if err != nil {
			return nil, fmt.Errorf("failed to parse service table %s: %w", path, err)
		}
		merge(table, extra)
	}

	return &ServiceEngine{table: table}, nil
}

// NameFor 查询服务名
// 未知端口/协议返回 ("", false)，调用方直接省略注解即可
func (e *ServiceEngine) NameFor(port int, proto string) (string, bool) {
	if e == nil {
		return "", false
	}
	proto = strings.ToLower(strings.TrimSpace(proto))
	if proto == "" {
		proto = DefaultProtocol
	}
	name, ok := e.table[proto][port]
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// Len 指定协议下的条目数
func (e *ServiceEngine) Len(proto string) int {
	return len(e.table[proto])
}

func parseTable(content []byte) (map[string]map[int]string, error) {
	raw := make(map[string]map[int]string)
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, err
	}
	table := make(map[string]map[int]string, len(raw))
	for proto, ports := range raw {
		key := strings.ToLower(proto)
		if table[key] == nil {
			table[key] = make(map[int]string, len(ports))
		}
		for port, name := range ports {
			table[key][port] = strings.TrimSpace(name)
		}
	}
	return table, nil
}

func merge(dst, src map[string]map[int]string) {
	for proto, ports := range src {
		if dst[proto] == nil {
			dst[proto] = make(map[int]string, len(ports))
		}
		for port, name := range ports {
			dst[proto][port] = name
		}
	}
}

var (
	defaultOnce   sync.Once
	defaultEngine *ServiceEngine
)

// Default 只含内置表的共享实例
func Default() *ServiceEngine {
	defaultOnce.Do(func() {
		e, err := NewServiceEngine()
		if err != nil {
			// 内置表随二进制一起编译，解析失败说明构建有问题
			panic(err)
		}
		defaultEngine = e
	})
	return defaultEngine
}
