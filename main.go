package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"es-recorder/binary"
	"es-recorder/database"
	"es-recorder/esversion"
	"es-recorder/network"
	"es-recorder/platform"
	"es-recorder/process"
	"es-recorder/sigma"
	"es-recorder/web"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	socketPath := flag.String("socket", "", "platform shim socket path (overrides config)")
	listenAddr := flag.String("listen", "", "web API listen address (overrides config)")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *socketPath != "" {
		cfg.SocketPath = *socketPath
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}

	// The version gate must be set before any record is decoded; Set
	// refuses releases that predate endpoint security.
	maj, min, pat, err := hostOSVersion(cfg)
	if err != nil {
		log.Fatalf("Failed to determine macOS version: %v", err)
	}
	esversion.Set(maj, min, pat)
	log.Printf("Recording against macOS %d.%d.%d", maj, min, pat)

	db, err := initDatabaseWithUser(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	binaryCache, err := binary.NewCache(binary.DefaultCacheSize, cfg.BinaryDir)
	if err != nil {
		log.Fatalf("Failed to initialize binary cache: %v", err)
	}

	detector, err := sigma.NewDetector(cfg.RulesDir, db.Db)
	if err != nil {
		log.Fatalf("Failed to initialize Sigma detector: %v", err)
	}
	defer detector.StopPolling()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := detector.StartPolling(ctx, cfg.SigmaPollInterval); err != nil {
			log.Printf("Sigma detector error: %v", err)
		}
	}()

	server := web.NewServer(db.Db, detector, binaryCache, cfg.ListenAddr)
	go func() {
		if err := server.Start(ctx); err != nil {
			log.Printf("Web server error: %v", err)
		}
	}()
	log.Printf("Web interface available at http://localhost%s", cfg.ListenAddr)

	conn, err := platform.Dial(cfg.SocketPath)
	if err != nil {
		log.Fatalf("Failed to connect to platform shim at %s: %v", cfg.SocketPath, err)
	}

	for _, path := range cfg.MutePaths {
		if err := conn.MutePath(platform.MutePrefix, path); err != nil {
			log.Printf("Failed to mute path %s: %v", path, err)
		}
	}

	processMap, err := process.NewProcessMap(cfg.ProcessMapSize)
	if err != nil {
		log.Fatalf("Failed to initialize process map: %v", err)
	}

	monitor := platform.NewMonitor(conn, platform.MonitorConfig{
		DB:          db,
		BinaryCache: binaryCache,
		ProcessMap:  processMap,
		EndpointMap: network.NewEndpointMap(0),
	})
	if err := monitor.Start(); err != nil {
		log.Fatalf("Failed to start monitor: %v", err)
	}

	log.Println("Recording started... Press Ctrl+C to stop")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("Shutting down...")
	cancel()
	if err := monitor.Stop(); err != nil {
		log.Printf("Error stopping monitor: %v", err)
	}
}

func initDatabaseWithUser(dataDir string) (*database.DB, error) {
	// The recorder runs as root for the shim socket; the database is
	// owned by the invoking user when one is known.
	if err := dropPrivileges(); err != nil {
		log.Printf("Warning: running with full privileges: %v", err)
	}

	return database.NewDB(dataDir)
}
