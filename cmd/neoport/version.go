package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"neoport/internal/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Long:  "显示 neoport 的版本信息，包括版本号、构建时间、Git 提交和 Go 版本。",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := version.GetInfo()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "neoport %s\n", version.GetFullVersion())
			fmt.Fprintf(out, "API Version: %s\n", info.APIVersion)
			fmt.Fprintf(out, "Build Time: %s\n", info.BuildTime)
			fmt.Fprintf(out, "Git Commit: %s\n", info.GitCommit)
			fmt.Fprintf(out, "Go Version: %s\n", info.GoVersion)
			fmt.Fprintf(out, "Platform: %s\n", info.Platform)
		},
	}
}
