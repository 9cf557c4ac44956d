package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  bulletinboard [serve] [--addr 0.0.0.0:5077] [--data .] [--static wwwroot] [--env development]")
	fmt.Println("  bulletinboard version")
}

func main() {
	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		cfg, err := LoadConfig(args)
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(2)
		}
		logger := NewLogger(os.Stdout, cfg.IsDevelopment())
		if err := startServer(cfg, logger); err != nil {
			logger.Error(ComponentHTTPServer, err.Error())
			os.Exit(1)
		}
	case "version":
		fmt.Println(GetVersionInfo())
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}
