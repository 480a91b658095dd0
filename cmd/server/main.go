package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/youruser/imgcomp/internal/api"
)

const (
	// DefaultPort is the default server port
	DefaultPort = "8080"

	// DefaultMaxUploadSize is the default per-file upload limit (32MB)
	DefaultMaxUploadSize = 32 << 20

	// GracefulShutdownTimeout is the timeout for graceful shutdown
	GracefulShutdownTimeout = 10 * time.Second
)

func main() {
	config := &api.Config{
		MaxUploadSize: getEnvInt64("MAX_UPLOAD_SIZE", DefaultMaxUploadSize),
		DeviceScale:   getEnvFloat("DEVICE_SCALE", 1),
		BatchWorkers:  int(getEnvInt64("BATCH_WORKERS", int64(runtime.NumCPU()))),
	}

	r := gin.Default()
	r.MaxMultipartMemory = config.MaxUploadSize
	api.RegisterRoutes(r, config)

	port := getEnv("PORT", DefaultPort)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Println("starting server on http://localhost:" + port)
		log.Printf("max upload size: %d bytes, device scale: %g, batch workers: %d",
			config.MaxUploadSize, config.DeviceScale, config.BatchWorkers)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	log.Println("server exited")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
		log.Printf("Warning: ignoring invalid %s=%q", key, value)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
		log.Printf("Warning: ignoring invalid %s=%q", key, value)
	}
	return defaultValue
}
