//go:build !windows

package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/mattn/go-isatty"
)

// isDoubleClick reports whether the program was started from a file manager.
// On Unix that shows up as stdin not being a terminal.
func isDoubleClick() bool {
	if os.Getenv(spawnedEnv) == "1" {
		return false
	}
	return !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// spawnTerminal reopens the executable in a terminal window with -tui.
func spawnTerminal() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	env := append(os.Environ(), spawnedEnv+"=1")

	if runtime.GOOS == "darwin" {
		cmd := exec.Command("open", "-a", "Terminal", exe, "--args", "-tui")
		cmd.Env = env
		return cmd.Start()
	}

	terminals := []struct {
		name string
		args []string
	}{
		{"x-terminal-emulator", []string{"-e", exe, "-tui"}},
		{"gnome-terminal", []string{"--", exe, "-tui"}},
		{"konsole", []string{"-e", exe, "-tui"}},
		{"xfce4-terminal", []string{"-e", exe + " -tui"}},
		{"xterm", []string{"-e", exe, "-tui"}},
	}
	for _, term := range terminals {
		if _, err := exec.LookPath(term.name); err != nil {
			continue
		}
		cmd := exec.Command(term.name, term.args...)
		cmd.Env = env
		if err := cmd.Start(); err == nil {
			return nil
		}
	}

	return fmt.Errorf("no terminal emulator found")
}
