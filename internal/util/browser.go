package util

import (
	"os/exec"
	"runtime"
)

// browserCommands 按优先级返回打开 url 的命令（程序名 + 参数）
//
// Windows 先用 rundll32 调用 url.dll，兼容 Windows 7；失败再用 explorer。
func browserCommands(goos, url string) [][]string {
	switch goos {
	case "windows":
		return [][]string{
			{"rundll32", "url.dll,FileProtocolHandler", url},
			{"explorer", url},
		}
	case "darwin":
		return [][]string{{"open", url}}
	default:
		return [][]string{
			{"xdg-open", url},
			{"sensible-browser", url},
			{"google-chrome", url},
			{"firefox", url},
		}
	}
}

// OpenBrowser 用默认浏览器打开表单页，依次尝试备选命令
func OpenBrowser(url string) error {
	var err error
	for _, args := range browserCommands(runtime.GOOS, url) {
		if err = exec.Command(args[0], args[1:]...).Start(); err == nil {
			return nil
		}
	}
	return err
}
