package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"avrctl/pkg/api"
	"avrctl/pkg/command"
	"avrctl/pkg/config"
	"avrctl/pkg/database"
	"avrctl/pkg/discovery"
	"avrctl/pkg/seed"
	"avrctl/pkg/status"
	"avrctl/pkg/transport"

	"github.com/gin-gonic/gin"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	conf, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Config loaded",
		"server_address", conf.ServerAddress,
		"db_path", conf.DBPath,
		"command_timeout_s", conf.CommandTimeoutSeconds,
	)

	db, err := database.Connect(conf)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if conf.SeedOnStart {
		if err := seed.Run(db); err != nil {
			slog.Error("Failed to seed receiver catalog", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Transports and executor
	commandTimeout := time.Duration(conf.CommandTimeoutSeconds) * time.Second
	socketReadTimeout := time.Duration(conf.SocketReadTimeoutMs) * time.Millisecond
	socketAdapter := transport.NewSocketAdapter(commandTimeout, socketReadTimeout)
	defer socketAdapter.Close()

	commandStore := database.NewCommandStore(db)
	executor := command.NewExecutor(
		commandStore,
		transport.NewHTTPAdapter(commandTimeout),
		socketAdapter,
		conf.ResponseExcerptBytes,
	)

	// Discovery sweep
	discService := discovery.NewService(
		database.NewDiscoveryStore(db),
		conf.DiscoveryCIDR,
		parsePorts(conf.DiscoveryPorts),
		conf.DiscoveryWorkerConcurrency,
		time.Duration(conf.DiscoveryProbeTimeoutMs)*time.Millisecond,
		time.Duration(conf.DiscoveryIntervalSeconds)*time.Second,
		time.Duration(conf.DiscoveryStaleAfterMinutes)*time.Minute,
	)
	go discService.Run(ctx)

	// HTTP surface
	statusClient := status.NewClient(commandTimeout)
	r := gin.Default()
	api.Register(r, api.Deps{
		DB:        db,
		Auth:      api.Auth(conf),
		Execute:   api.NewExecuteHandler(executor, commandStore, statusClient),
		Discovery: discService,
	})

	slog.Info("Starting server", "address", conf.ServerAddress)
	if err := r.Run(conf.ServerAddress); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func parsePorts(csv string) []int {
	var ports []int
	for _, part := range strings.Split(csv, ",") {
		p, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || p < 1 || p > 65535 {
			slog.Warn("Ignoring invalid discovery port", "value", part)
			continue
		}
		ports = append(ports, p)
	}
	return ports
}
