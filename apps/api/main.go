package main

import (
	"context"
	"expvar"
	"flag"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"

	echoapi "github.com/trezcool/sems/apps/api/echo"
	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/user"
	appfs "github.com/trezcool/sems/fs"
)

func main() {
	wiring := flag.String("wiring", "dig", "how the dependencies are wired: dig | manual")
	flag.Parse()

	switch *wiring {
	case "dig":
		startWithDig()
	case "manual":
		startManual()
	default:
		log.Fatalf("unknown wiring %q", *wiring)
	}
}

type closer interface {
	Close()
}

// initApp loads the embedded email templates and common passwords.
func initApp(conf *core.Config, logger core.Logger) {
	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))

	core.ParseEmailTemplates(appfs.FS, logger, !conf.Debug)
	user.LoadCommonPasswords(appfs.FS, logger)
}

// serve starts the debug & API servers and blocks until the API server stops.
func serve(conf *core.Config, logger core.Logger, server *echoapi.Server) {
	defer logger.Info("Application stopped")
	if c, ok := logger.(closer); ok {
		defer c.Close()
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shut down and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
