package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/arx-os/arxspace/internal/common/logger"
)

var (
	flagServeAddr string
	flagServeFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose node dumps, stats and Prometheus metrics over HTTP",
	Long: `Serve loads an optional CSV file into the index and exposes debug
endpoints for external visualizers:

  GET /stats   - entity and node counts
  GET /nodes   - node keys, levels and bounds as JSON
  GET /metrics - Prometheus metrics`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&flagServeFile, "file", "", "CSV file to load on startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	st, err := newStore(flagEngine, appConfig)
	if err != nil {
		return err
	}

	if flagServeFile != "" {
		positions, labels, err := readPointsCSV(flagServeFile)
		if err != nil {
			return err
		}
		_, errs := st.InsertBatch(positions, labels, uint8(flagLevel))
		for i, e := range errs {
			if e != nil {
				logger.Warn("line %d: %v", i+1, e)
			}
		}
		logger.Info("loaded %d entities from %s", st.EntityCount(), flagServeFile)
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/stats", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, map[string]interface{}{
			"engine":   st.Engine(),
			"entities": st.EntityCount(),
			"nodes":    st.NodeCount(),
		})
	})
	r.Get("/nodes", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, st.NodeDump())
	})
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: flagServeAddr, Handler: r}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("serving %s index on %s", st.Engine(), flagServeAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed: %v", err)
		}
	}()

	<-done
	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
