package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/seatwise/go-seat-server/accounts"
	"github.com/seatwise/go-seat-server/accounts/gormrepo"
	"github.com/seatwise/go-seat-server/accounts/repofake"
	"github.com/seatwise/go-seat-server/internal/config"
	"github.com/seatwise/go-seat-server/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error running server: %s\n", err)
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	store, err := openStore(c)
	if err != nil {
		return fmt.Errorf("openStore: %w", err)
	}

	seatServer, err := server.New(c, store)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: seatServer}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

// openStore selects the durable SQLite store, or the in-memory store when no
// database path is configured (dev and tests only - state dies with the
// process).
func openStore(c config.Config) (accounts.Store, error) {
	path := c.GetDatabasePath()
	if path == "" {
		log.Printf("No database path configured; using the in-memory account store")
		return fakeaccountrepo.NewFakeAccountRepo(), nil
	}

	db, err := gormaccountrepo.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gormaccountrepo.Open: %w", err)
	}
	if err := gormaccountrepo.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("gormaccountrepo.AutoMigrate: %w", err)
	}
	return gormaccountrepo.New(db), nil
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
