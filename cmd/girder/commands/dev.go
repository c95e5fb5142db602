package commands

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/girderweb/girder/config"
)

// execCommand is used to execute external commands. It is defined as a
// variable so tests can replace it with a mock implementation.
var execCommand = exec.Command

const devBinary = ".girder-dev-server"

func runDevServer(configPath, port, target string) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var (
		cmd      *exec.Cmd
		cmdMutex sync.Mutex
	)

	startServer := func() {
		cmdMutex.Lock()
		defer cmdMutex.Unlock()

		if cmd != nil && cmd.Process != nil {
			fmt.Println("Stopping server...")
			cmd.Process.Signal(syscall.SIGTERM)
			cmd.Wait()
		}

		fmt.Println("Building...")
		buildCmd := execCommand("go", "build", "-o", devBinary, target)
		buildCmd.Stdout = os.Stdout
		buildCmd.Stderr = os.Stderr
		if err := buildCmd.Run(); err != nil {
			fmt.Printf("Build failed: %v\n", err)
			return
		}

		fmt.Printf("Starting server on port %s...\n", port)
		cmd = execCommand("./" + devBinary)
		cmd.Env = append(os.Environ(), fmt.Sprintf("GIRDER_SERVER_ADDRESS=:%s", port))
		if configPath != "" {
			cmd.Env = append(cmd.Env, fmt.Sprintf("GIRDER_CONFIG_PATH=%s", configPath))
		}

		stdout, _ := cmd.StdoutPipe()
		stderr, _ := cmd.StderrPipe()

		go io.Copy(os.Stdout, stdout)
		go io.Copy(os.Stderr, stderr)

		if err := cmd.Start(); err != nil {
			fmt.Printf("Failed to start server: %v\n", err)
		}
	}

	startServer()

	watcher, err := config.Watch(
		[]string{".", "actions", "config"},
		[]string{".go", ".yaml"},
		500*time.Millisecond,
		func(path string) {
			// Skip the dev binary and dotfiles
			if strings.Contains(path, devBinary) || strings.HasPrefix(filepath.Base(path), ".") {
				return
			}
			fmt.Printf("File changed: %s\n", path)
			startServer()
		},
	)
	if err != nil {
		return fmt.Errorf("failed to watch source directories: %w", err)
	}
	defer watcher.Close()

	<-sigChan
	fmt.Println("\nShutting down...")

	cmdMutex.Lock()
	if cmd != nil && cmd.Process != nil {
		cmd.Process.Signal(syscall.SIGTERM)
		cmd.Wait()
	}
	cmdMutex.Unlock()
	os.Remove(devBinary)
	return nil
}
