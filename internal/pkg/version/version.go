// ### 发布流程
// 1. **更新版本号**：修改 `internal/pkg/version/version.go`
// 2. **构建时注入**：-ldflags "-X neoport/internal/pkg/version.GitCommit=$(git rev-parse --short HEAD) -X neoport/internal/pkg/version.BuildTime=..."
// 3. **推送代码和 Tag**：推送到远程仓库

package version

import (
	"fmt"
	"runtime"
)

var (
	Version    = "1.0.0" // 版本号 -- 发布时候更新版本号
	APIVersion = "v1"
	BuildTime  string
	GitCommit  string
)

// Info 版本信息，HTTP /version 与 version 子命令共用
type Info struct {
	Version    string `json:"version"`
	APIVersion string `json:"api_version"`
	GitCommit  string `json:"git_commit,omitempty"`
	BuildTime  string `json:"build_time,omitempty"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

func GetVersion() string {
	return Version
}

// GetInfo 汇总版本信息
func GetInfo() Info {
	return Info{
		Version:    Version,
		APIVersion: APIVersion,
		GitCommit:  GitCommit,
		BuildTime:  BuildTime,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

func GetFullVersion() string {
	if GitCommit == "" {
		return Version
	}
	return Version + "-" + GitCommit
}
