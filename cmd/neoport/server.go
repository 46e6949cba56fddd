/*
 * @author: Sun977
 * @date: 2026.02.15
 * @description: Server 模式子命令
 */

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"neoport/internal/app/server"
	"neoport/internal/config"
	"neoport/internal/core/lib/network/dialer"
	"neoport/internal/core/scanner/port"
	"neoport/internal/pkg/fingerprint/engines/service"
	"neoport/internal/pkg/logger"
)

// shutdownTimeout 等待在途请求的最长时间
const shutdownTimeout = 5 * time.Second

func newServerCmd(cli *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "启动 HTTP 扫描服务",
		Long: `以 HTTP 服务方式运行，通过 POST /api/v1/scan 提交扫描。
客户端断开连接即取消对应扫描。

命令行参数优先级高于配置文件，配置文件中的日志配置支持热重载。

示例:
  neoport server --host 0.0.0.0 --port 8080
  neoport server --config ./configs/config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, cli)
		},
	}

	flags := cmd.Flags()
	flags.String("host", "", "监听地址")
	flags.Int("port", 0, "监听端口")
	flags.String("mode", "", "运行模式 (debug/release)")
	cli.bind(cmd, "server.host", "host")
	cli.bind(cmd, "server.port", "port")
	cli.bind(cmd, "server.mode", "mode")

	return cmd
}

// newScheduler 按扫描配置组装调度器
func newScheduler(cfg *config.ScanConfig) (*port.Scheduler, error) {
	d, err := dialer.New(cfg.Proxy)
	if err != nil {
		return nil, err
	}
	dialer.SetGlobalDialer(d)

	resolver, err := service.NewServiceEngine(cfg.ServiceFiles...)
	if err != nil {
		return nil, err
	}

	return port.NewScheduler(
		port.NewTCPProber(nil), // 使用上面设置的全局拨号器
		resolver,
		port.WithGrace(cfg.Grace),
		port.WithAdaptive(cfg.Adaptive),
	), nil
}

func runServer(cmd *cobra.Command, cli *cliContext) error {
	cfg := cli.cfg

	scheduler, err := newScheduler(cfg.Scan)
	if err != nil {
		return &exitError{code: ExitFatal, err: err}
	}

	app := server.NewApp(cfg, scheduler)
	if err := app.Start(); err != nil {
		return &exitError{code: ExitFatal, err: err}
	}

	if cli.loader.Watch(cfg, reloadLogConfig, func(err error) {
		logger.LogSystemEvent("config", "reload_failed", err.Error(), logger.ErrorLevel, nil)
	}) {
		logger.LogSystemEvent("config", "watch", "watching config file", logger.InfoLevel, map[string]interface{}{
			"path": cli.loader.GetConfigPath(),
		})
	}

	// 等待中断信号以优雅地关闭服务器
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logger.LogSystemEvent("server", "signal", "shutting down", logger.InfoLevel, nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Stop(shutdownCtx); err != nil {
		return &exitError{code: ExitFatal, err: err}
	}
	return nil
}

// reloadLogConfig 配置文件变更时只热更新日志配置
// 扫描参数与监听地址需要重启生效
func reloadLogConfig(oldConfig, newConfig *config.Config) error {
	if logger.LoggerInstance == nil {
		return nil
	}
	if err := logger.LoggerInstance.UpdateConfig(newConfig.Log); err != nil {
		return err
	}
	logger.LogSystemEvent("config", "reload", "log config reloaded", logger.InfoLevel, map[string]interface{}{
		"old_level": oldConfig.Log.Level,
		"new_level": newConfig.Log.Level,
	})
	return nil
}
