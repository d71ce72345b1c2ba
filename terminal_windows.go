//go:build windows

package main

import (
	"os"
	"os/exec"
	"syscall"
	"unsafe"
)

var (
	kernel32 = syscall.NewLazyDLL("kernel32.dll")

	procGetConsoleProcessList = kernel32.NewProc("GetConsoleProcessList")
)

// isDoubleClick reports whether the program owns its console alone, which
// happens when Explorer starts it.
func isDoubleClick() bool {
	if os.Getenv(spawnedEnv) == "1" {
		return false
	}
	var processes [2]uint32
	ret, _, _ := procGetConsoleProcessList.Call(
		uintptr(unsafe.Pointer(&processes[0])),
		uintptr(2),
	)
	return ret == 1
}

// spawnTerminal reopens the executable in a new console with -tui.
func spawnTerminal() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	cmd := exec.Command("cmd", "/c", "start", "", exe, "-tui")
	cmd.Env = append(os.Environ(), spawnedEnv+"=1")
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_CONSOLE,
	}
	return cmd.Start()
}
