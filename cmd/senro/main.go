package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"
	"nyiyui.ca/hato/senro/config"
	"nyiyui.ca/hato/senro/ctl"
	"nyiyui.ca/hato/senro/register"
)

func main() {
	c, err := config.Load()
	if err != nil {
		config.Exitf("load config: %s", err)
	}
	level := zap.LevelFlag("log-level", c.LogLevel, "set log level")
	prompt := flag.String("prompt", c.Prompt, "prompt written before every command")
	echo := flag.Bool("echo", c.Echo, "echo commands read")
	flag.Parse()
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(*level)
	dev, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	defer dev.Sync()
	zap.ReplaceGlobals(dev)

	r, err := register.New()
	if err != nil {
		zap.S().Fatalf("new register: %s", err)
	}
	defer r.Close()
	sh := ctl.NewShell(r, os.Stdout, ctl.ShellConf{Prompt: *prompt, Echo: *echo})
	if err := sh.Run(context.Background(), os.Stdin); err != nil {
		zap.S().Errorf("shell: %s", err)
	}
}
