// Command vmallocd is a standalone process that exercises the vmalloc
// engine: it drives a synthetic workload against the shared heap and
// serves Prometheus metrics and a diagnostics dump over HTTP. It is not a
// libc preload shim — it imports kernel/alloc as an ordinary library,
// which is how the engine is meant to be embedded and observed.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nmxmxh/vmalloc/kernel/alloc"
	"github.com/nmxmxh/vmalloc/kernel/diag"
	"github.com/nmxmxh/vmalloc/kernel/utils"
)

var log = utils.DefaultLogger("vmallocd")

func main() {
	addr := flag.String("addr", ":9090", "listen address for /metrics and /debug/dump")
	workers := flag.Int("workers", 10, "synthetic workload goroutine count")
	ops := flag.Int("ops", 1000, "operations per workload goroutine")
	maxSize := flag.Int("max-size", 256, "maximum request size for the synthetic workload, in bytes")
	runWorkload := flag.Bool("workload", true, "run the synthetic workload once at startup")
	flag.Parse()

	shutdown := utils.NewGracefulShutdown(10*time.Second, log.With("shutdown"))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/debug/dump", dumpHandler)

	server := &http.Server{Addr: *addr, Handler: mux}
	shutdown.Register(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	})

	if *runWorkload {
		log.Info("running synthetic workload", utils.Int("workers", *workers), utils.Int("ops", *ops), utils.Int("maxSize", *maxSize))
		runSyntheticWorkload(*workers, *ops, *maxSize)
		log.Info("synthetic workload complete")
	}

	go func() {
		log.Info("listening", utils.String("addr", *addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", utils.Err(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := shutdown.Shutdown(ctx); err != nil {
		log.Error("shutdown did not complete cleanly", utils.Err(err))
	}
}

func dumpHandler(w http.ResponseWriter, r *http.Request) {
	report := diag.Snapshot(alloc.Default())

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, diag.FormatReport(report))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		log.Error("failed to encode dump", utils.Err(err))
	}
}

// runSyntheticWorkload mirrors the concurrent-churn scenario: each
// goroutine performs a mix of allocate, allocate+resize+release, and
// resize-from-null+release against the shared process-wide heap.
func runSyntheticWorkload(workers, ops, maxSize int) {
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for j := 0; j < ops; j++ {
				size := 1 + rng.Intn(maxSize)
				switch rng.Intn(3) {
				case 0:
					ptr := alloc.Allocate(size)
					alloc.Release(ptr)
				case 1:
					ptr := alloc.Allocate(size)
					if ptr != nil {
						grown := alloc.Resize(ptr, size+rng.Intn(maxSize))
						alloc.Release(grown)
					}
				case 2:
					ptr := alloc.Resize(nil, size)
					alloc.Release(ptr)
				}
			}
		}(time.Now().UnixNano() + int64(i))
	}
	wg.Wait()
}
