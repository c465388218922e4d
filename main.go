package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/wfunc/tugofwar/broadcast"
	"github.com/wfunc/tugofwar/config"
	"github.com/wfunc/tugofwar/lobby"
	"github.com/wfunc/tugofwar/logger"
	"github.com/wfunc/tugofwar/monitor"
	"github.com/wfunc/tugofwar/persistence"
	"github.com/wfunc/tugofwar/question"
	"github.com/wfunc/tugofwar/rpc"
	"github.com/wfunc/tugofwar/server"
	"github.com/wfunc/tugofwar/services"
	"github.com/wfunc/tugofwar/session"
	"github.com/wfunc/tugofwar/timer"
)

func main() {
	configPath := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(err)
	}

	// Initialize logger
	logger.Init(cfg.Log.Level, cfg.Log.Encoding)
	defer logger.Sync()

	// Initialize match history
	db, err := persistence.Open(cfg.Database)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	matches := services.NewMatchService(db, 0)

	timers := timer.NewTimerManager(cfg.Game.TimerResolution)
	mon := monitor.NewMonitor("tugofwar")
	sessions := session.NewManager()

	lobbies := lobby.NewStore(lobby.Options{
		Settings: lobby.Settings{
			TugLimit:         cfg.Game.TugLimit,
			TugStep:          cfg.Game.TugStep,
			QuestionDuration: cfg.Game.QuestionDuration,
			StartDelay:       cfg.Game.StartDelay,
		},
		Notifier:  broadcast.NewRoomBroadcaster(sessions),
		Scheduler: timers,
		Questions: question.NewGenerator(nil),
		Recorder:  matches,
		Monitor:   mon,
	})

	var rpcServer *rpc.Server
	if cfg.Server.RPCAddress != "" {
		rpcServer, err = rpc.NewServer(cfg.Server.RPCAddress)
		if err != nil {
			logger.Log.Fatalf("Failed to create RPC server: %v", err)
		}
		if err := rpcServer.Register(rpc.NewAdmin(lobbies, matches)); err != nil {
			logger.Log.Fatalf("Failed to register RPC service: %v", err)
		}
		go rpcServer.Start()
	}

	var healthServer *rpc.HealthServer
	if cfg.Server.GRPCAddress != "" {
		healthServer, err = rpc.NewHealthServer(cfg.Server.GRPCAddress)
		if err != nil {
			logger.Log.Fatalf("Failed to create gRPC health server: %v", err)
		}
		go healthServer.Start()
	}

	// Initialize Game Server
	gameServer := server.NewGameServer(cfg.Server.HTTPAddress(), server.Options{
		Lobbies:  lobbies,
		Sessions: sessions,
		Monitor:  mon,
		Matches:  matches,
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- gameServer.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Log.Infof("Received %s, shutting down", sig)
	case err := <-errChan:
		if err != nil {
			logger.Log.Errorf("Game server stopped: %v", err)
		}
	}

	if healthServer != nil {
		healthServer.SetServing(false)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := gameServer.Shutdown(ctx); err != nil {
		logger.Log.Errorf("Game server shutdown: %v", err)
	}

	timers.Stop()
	matches.Close()
	if err := db.Close(); err != nil {
		logger.Log.Errorf("Database close: %v", err)
	}
	if rpcServer != nil {
		rpcServer.Stop()
	}
	if healthServer != nil {
		healthServer.Stop()
	}
	logger.Log.Info("Server stopped.")
}
