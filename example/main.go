// FILE: lixenwraith/lconfig/example/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lixenwraith/lconfig"
)

// ServerConfig is decoded from the [server] section.
type ServerConfig struct {
	Host     string        `lconfig:"host" validate:"required"`
	Port     int           `lconfig:"port" validate:"min=1024,max=65535"`
	LogLevel string        `lconfig:"log_level" validate:"oneof=debug info warn error"`
	Timeout  time.Duration `lconfig:"timeout"`
	Allow    []string      `lconfig:"allow"`
	LogDir   string        `lconfig:"log_dir"`
}

const initialConfig = `include = shared.conf
root = /srv/demo

[server]
host = localhost
port = 8080
log_level = info
allow = 10.0.0.0/8
allow = 192.168.0.0/16
log_dir = ${root}/log
`

const sharedConfig = `timeout = 5s
root = /srv/shared
`

func main() {
	// =========================================================================
	// PART 1: INITIAL SETUP
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 1: Creating configuration files...")

	dir, err := os.MkdirTemp("", "lconfig-example")
	if err != nil {
		log.Fatalf("❌ Failed to create temp dir: %v", err)
	}
	configFilePath := filepath.Join(dir, "app.conf")

	defer func() {
		log.Println("---")
		log.Println("🧹 Cleaning up...")
		os.RemoveAll(dir)
		os.Unsetenv("APP_SERVER_PORT")
		log.Printf("Removed %s and unset APP_SERVER_PORT.", dir)
	}()

	if err := os.WriteFile(filepath.Join(dir, "shared.conf"), []byte(sharedConfig), 0644); err != nil {
		log.Fatalf("❌ Failed to write shared.conf: %v", err)
	}
	if err := os.WriteFile(configFilePath, []byte(initialConfig), 0644); err != nil {
		log.Fatalf("❌ Failed to write app.conf: %v", err)
	}
	log.Printf("✅ Configuration written to %s.", dir)

	// =========================================================================
	// PART 2: BUILDER
	// Includes, environment overrides and validation.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 2: Building configuration...")

	os.Setenv("APP_SERVER_PORT", "8888")
	log.Println("   (Set environment variable APP_SERVER_PORT=8888)")

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	builder := lconfig.NewBuilder().
		WithOptions(lconfig.WithLogger(logger)).
		WithDefaults(map[string]any{"log_level": "warn"}).
		WithFile(configFilePath).
		WithIncludes(lconfig.DefaultIncludeOptions()).
		WithEnvPrefix("APP_").
		WithValidator(func(c *lconfig.Config) error {
			return c.Validate("server:host", "server:port")
		})

	var server ServerConfig
	if err := builder.BuildAndScan("server", &server); err != nil {
		log.Fatalf("❌ Builder failed: %v", err)
	}
	log.Println("✅ Builder finished successfully.")
	printCurrentState(&server, "Initial State (Env overrides File)")

	// =========================================================================
	// PART 3: WATCHER
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 3: Testing the file watcher...")

	watcher, err := lconfig.NewWatcher(builder, lconfig.WatchOptions{
		PollInterval: 250 * time.Millisecond,
		Debounce:     100 * time.Millisecond,
	})
	if err != nil {
		log.Fatalf("❌ Watcher failed: %v", err)
	}
	watcher.Start()
	defer watcher.Stop()
	changes := watcher.Subscribe()
	log.Println("✅ Watcher is now active.")

	var wg sync.WaitGroup
	wg.Add(1)
	go modifyFile(&wg, configFilePath)
	log.Println("   (Modifier goroutine dispatched to change file in 1 second...)")

	select {
	case key := <-changes:
		log.Printf("✅ Watcher detected a change: '%s'", key)
		var updated ServerConfig
		if err := watcher.Config().Scan("server", &updated); err != nil {
			log.Fatalf("❌ Scan failed after update: %v", err)
		}
		if updated.LogLevel != "debug" {
			log.Fatalf("❌ VERIFICATION FAILED: Expected log_level 'debug', but got '%s'.", updated.LogLevel)
		}
		log.Println("✅ VERIFICATION SUCCESSFUL: Watcher published the new snapshot.")
		printCurrentState(&updated, "Final State (Updated by Watcher)")

	case <-time.After(5 * time.Second):
		log.Fatalf("❌ TEST FAILED: Timed out waiting for watcher notification.")
	}

	wg.Wait()

	// Manual reload reports nothing new once the watcher caught up.
	changed, err := watcher.Reload(context.Background())
	if err != nil {
		log.Fatalf("❌ Reload failed: %v", err)
	}
	log.Printf("   Manual reload changed %d keys.", len(changed))
}

// modifyFile simulates an external program rewriting the config file.
func modifyFile(wg *sync.WaitGroup, path string) {
	defer wg.Done()
	time.Sleep(1 * time.Second)
	log.Println("   (Modifier goroutine: now changing file on disk...)")

	cfg := lconfig.New()
	if err := cfg.ReadFile(path); err != nil {
		log.Fatalf("❌ Modifier failed to read file: %v", err)
	}
	if err := cfg.Set("server", "log_level", "debug"); err != nil {
		log.Fatalf("❌ Modifier failed to set log_level: %v", err)
	}
	if err := cfg.WriteFile(path); err != nil {
		log.Fatalf("❌ Modifier failed to write file: %v", err)
	}
	log.Println("   (Modifier goroutine: finished.)")
}

func printCurrentState(cfg *ServerConfig, title string) {
	fmt.Println("   --------------------------------------------------")
	fmt.Printf("             %s\n", title)
	fmt.Println("   --------------------------------------------------")
	fmt.Printf("     Host:      %s\n", cfg.Host)
	fmt.Printf("     Port:      %d\n", cfg.Port)
	fmt.Printf("     Log Level: %s\n", cfg.LogLevel)
	fmt.Printf("     Timeout:   %s\n", cfg.Timeout)
	fmt.Printf("     Allow:     %v\n", cfg.Allow)
	fmt.Printf("     Log Dir:   %s\n", cfg.LogDir)
	fmt.Println("   --------------------------------------------------")
}
