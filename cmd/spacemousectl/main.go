// Command spacemousectl is a thin demonstration client for the
// spacemouse driver: it builds one Driver per the flags given, prints
// connection-state transitions, stick motion, and button edges to
// stdout, and exits on SIGINT/SIGTERM.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	spacemouse "spacemouse"
)

func main() {
	var (
		model     = pflag.String("model", "", "connect only to this model (SpaceMouseEnterprise, SpaceMouseWireless)")
		path      = pflag.String("path", "", "connect only to the device at this HID path")
		instant   = pflag.Bool("instant", false, "fire callbacks immediately on each input instead of on a fixed interval")
		interval  = pflag.Duration("interval", 20*time.Millisecond, "callback interval in interval mode")
		retry     = pflag.Duration("retry", 1*time.Second, "connection retry interval")
		logLevel  = pflag.String("log-level", "info", "error, warning, info, or debug")
	)
	pflag.Parse()

	level, err := parseLogLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "spacemousectl:", err)
		os.Exit(2)
	}
	logger := spacemouse.NewConsoleLogger(os.Stderr, level)

	dm, err := spacemouse.NewDriverManager(logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "spacemousectl:", err)
		os.Exit(1)
	}
	defer dm.Close()

	driver, err := buildDriver(dm, *model, *path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "spacemousectl:", err)
		os.Exit(1)
	}

	driver.SetInstantCallbacks(*instant)
	driver.SetCallbackInterval(*interval)
	driver.SetConnectionRetryInterval(*retry)

	driver.RegisterStickCallback(func(s spacemouse.StickInput) {
		fmt.Printf("stick: x=%.3f y=%.3f z=%.3f rx=%.3f ry=%.3f rz=%.3f\n",
			s.Get(spacemouse.LinearX), s.Get(spacemouse.LinearY), s.Get(spacemouse.LinearZ),
			s.Get(spacemouse.AngularX), s.Get(spacemouse.AngularY), s.Get(spacemouse.AngularZ))
	})
	for i := 0; i < spacemouse.ButtonCount; i++ {
		b := spacemouse.Button(i)
		driver.RegisterButtonCallback(b, func(pressed bool) {
			fmt.Printf("button %s: %v\n", b, pressed)
		})
	}

	driver.Run()
	defer driver.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}

func buildDriver(dm *spacemouse.DriverManager, model, path string) (*spacemouse.Driver, error) {
	switch {
	case path != "":
		return dm.NewDriverForPath(path)
	case model != "":
		m, err := parseModel(model)
		if err != nil {
			return nil, err
		}
		return dm.NewDriverForModel(m)
	default:
		return dm.NewDriverForAny(), nil
	}
}

func parseModel(s string) (spacemouse.Model, error) {
	switch strings.ToLower(s) {
	case "spacemouseenterprise", "enterprise":
		return spacemouse.SpaceMouseEnterprise, nil
	case "spacemousewireless", "wireless":
		return spacemouse.SpaceMouseWireless, nil
	default:
		return 0, fmt.Errorf("unsupported model %q", s)
	}
}

func parseLogLevel(s string) (spacemouse.LogLevel, error) {
	switch strings.ToLower(s) {
	case "error":
		return spacemouse.LevelError, nil
	case "warning", "warn":
		return spacemouse.LevelWarning, nil
	case "info":
		return spacemouse.LevelInfo, nil
	case "debug":
		return spacemouse.LevelDebug, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
