/*
 * @author: Sun977
 * @date: 2026.02.15
 * @description: Cobra Root Command 定义
 */

package main

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"neoport/internal/config"
	"neoport/internal/pkg/logger"
)

// cliContext 子命令共享的运行时状态，由 PersistentPreRunE 填充
type cliContext struct {
	cfgFile  string
	envFiles []string

	// 加载配置前绑定到 viper 的 flag
	bindings []flagBinding

	loader *config.ConfigLoader
	cfg    *config.Config
}

// flagBinding 配置键与 flag 的对应，只对所属命令生效
type flagBinding struct {
	cmd  *cobra.Command
	key  string
	flag string
}

// bind 登记一个覆盖配置项的 flag，登记在根命令上的对所有子命令生效
func (c *cliContext) bind(cmd *cobra.Command, key, flag string) {
	c.bindings = append(c.bindings, flagBinding{cmd: cmd, key: key, flag: flag})
}

// newRootCmd 构造完整命令树
func newRootCmd() *cobra.Command {
	cli := &cliContext{}

	rootCmd := &cobra.Command{
		Use:   "neoport",
		Short: "neoport TCP Connect 端口扫描器",
		Long: `neoport 对单个目标做并发 TCP Connect 端口扫描。
可以作为 CLI 工具单次运行，也可以作为 HTTP 服务运行.

示例:
  1.单机运行扫描
	neoport scan -t 192.168.1.1 -p 22,80,443,8000-8100
	neoport scan -t example.com -p top100 --oj result.json
  2.启动服务模式
	neoport server --host 0.0.0.0 --port 8080
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		// PersistentPreRunE: 全局初始化逻辑，确保所有子命令都能使用配置和日志
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.setup(cmd)
		},
	}

	// 全局 Flag
	pFlags := rootCmd.PersistentFlags()
	pFlags.StringVar(&cli.cfgFile, "config", "", "配置文件路径 (默认: ./configs/config.yaml)")
	pFlags.StringSliceVar(&cli.envFiles, "env-file", []string{".env"}, ".env 文件路径")
	pFlags.String("log-level", "", "日志级别 (debug, info, warn, error, fatal)")
	cli.bind(rootCmd, "log.level", "log-level")

	// 注册子命令
	rootCmd.AddCommand(newScanCmd(cli))
	rootCmd.AddCommand(newServerCmd(cli))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute 运行命令并返回退出码
func Execute() (code int) {
	return execute(newRootCmd(), os.Args[1:], os.Stderr)
}

func execute(rootCmd *cobra.Command, args []string, stderr io.Writer) (code int) {
	// 全局 Panic Recovery
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(stderr, "\n[FATAL] neoport crashed unexpectedly: %v\n", r)
			logger.WithField("stack", string(debug.Stack())).Error("panic in command")
			code = ExitFatal
		}
	}()

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err != nil && err.Error() != "" {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	if logger.LoggerInstance != nil {
		_ = logger.LoggerInstance.Close()
	}
	return exitCode(err)
}

// setup 加载 .env 与配置文件，初始化日志
func (c *cliContext) setup(cmd *cobra.Command) error {
	if err := config.NewEnvLoader(c.envFiles...).Load(); err != nil {
		return &exitError{code: ExitFatal, err: err}
	}

	c.loader = config.NewConfigLoader(c.cfgFile, config.DefaultEnvPrefix)
	for _, b := range c.bindings {
		if b.cmd != cmd && b.cmd != cmd.Root() {
			continue
		}
		flag := cmd.Flags().Lookup(b.flag)
		if flag == nil {
			continue
		}
		if err := c.loader.BindFlag(b.key, flag); err != nil {
			return &exitError{code: ExitFatal, err: err}
		}
	}

	cfg, err := c.loader.LoadConfig()
	if err != nil {
		return &exitError{code: ExitFatal, err: err}
	}
	c.cfg = cfg

	if cmd.Name() == "server" {
		_, err = logger.InitLogger(cfg.Log)
	} else {
		err = initCLILogger(cmd, cfg.Log)
	}
	if err != nil {
		return &exitError{code: ExitFatal, err: err}
	}

	if used := c.loader.GetConfigPath(); used != "" {
		logger.Debugf("Using config file: %s", used)
	}
	return nil
}

// initCLILogger 初始化 CLI 模式下的日志
// 扫描结果走 pterm 输出，日志默认只输出 Fatal，受 --log-level 控制
func initCLILogger(cmd *cobra.Command, base *config.LogConfig) error {
	level := "fatal"
	if flag := cmd.Flags().Lookup("log-level"); flag != nil && flag.Changed {
		level = flag.Value.String()
	}

	// 配置 pterm
	switch level {
	case "debug":
		pterm.EnableDebugMessages()
	case "info":
		pterm.DisableDebugMessages()
	default:
		pterm.DisableDebugMessages()
		pterm.Info = *pterm.Info.WithWriter(io.Discard)
	}

	logConfig := *base
	logConfig.Level = level
	if logConfig.Output == "stdout" {
		// stdout 留给扫描结果
		logConfig.Output = "stderr"
	}

	_, err := logger.InitLogger(&logConfig)
	return err
}
