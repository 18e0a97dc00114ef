package main

import (
	"github.com/OFFIS-RIT/osint/internal/server"
	"github.com/OFFIS-RIT/osint/internal/util"
	"github.com/OFFIS-RIT/osint/pkg/logger"
	"github.com/OFFIS-RIT/osint/pkg/logger/console"
)

func main() {
	util.LoadEnv()
	cfg := util.LoadConfig()

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  cfg.Debug,
		JSON:   cfg.LogJSON,
		Prefix: "server",
	})
	logger.Init(consoleLogger)

	server.Init(cfg)
}
