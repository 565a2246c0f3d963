// Package launcher 用系统默认程序打开导出的文件
package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// command 返回当前平台打开文件的命令；测试中可替换
var command = func(path string) *exec.Cmd {
	switch runtime.GOOS {
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path)
	case "darwin":
		return exec.Command("open", path)
	default:
		return exec.Command("xdg-open", path)
	}
}

// Open 启动外部查看器后立即返回，不等待查看器退出
func Open(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("文件不可访问: %w", err)
	}
	cmd := command(path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("启动查看器失败: %w", err)
	}
	go cmd.Wait()
	return nil
}
