// Command encircuit-worker runs homomorphic circuit evaluation workers.
//
// Workers pop evaluation jobs from a Redis queue, load the serialized
// circuit and encrypted input vector from blob storage, evaluate the circuit
// in parallel under the server key, and store the output ciphertexts back.
// The client key never reaches this process.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/luxfi/encircuit"
	"github.com/luxfi/encircuit/bitfhe"
	"github.com/luxfi/encircuit/internal/queue"
	"github.com/luxfi/encircuit/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		numWorkers  = flag.Int("workers", 4, "number of worker goroutines")
		gateWorkers = flag.Int("gate-workers", 4, "parallel gate workers per evaluation")
		redisAddr   = flag.String("redis", "localhost:6379", "Redis address")
		redisDB     = flag.Int("redis-db", 0, "Redis database number")
		queueName   = flag.String("queue", "default", "queue name")
		storagePath = flag.String("storage", "/tmp/encircuit-storage", "blob storage path")
		metricsAddr = flag.String("metrics", ":9090", "metrics server address")
	)
	flag.Parse()

	log.Printf("encircuit worker starting...")
	log.Printf("  Workers: %d (x%d gate workers)", *numWorkers, *gateWorkers)
	log.Printf("  Redis: %s", *redisAddr)
	log.Printf("  Storage: %s", *storagePath)
	log.Printf("  Metrics: %s", *metricsAddr)

	q, err := queue.NewRedisQueue(queue.RedisConfig{
		Addr: *redisAddr,
		DB:   *redisDB,
	}, *queueName)
	if err != nil {
		return fmt.Errorf("create queue: %w", err)
	}
	defer q.Close()

	store, err := storage.NewFileStore(*storagePath)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}

	params, err := bitfhe.NewParametersForScenario(bitfhe.FastDemo)
	if err != nil {
		return fmt.Errorf("create parameters: %w", err)
	}

	// Demo key material: a production deployment serves the server key out
	// of band and keeps the client key with the submitting party.
	_, serverKey := encircuit.NewKeyset(params).Split()

	pool := &WorkerPool{
		numWorkers:  *numWorkers,
		gateWorkers: *gateWorkers,
		queue:       q,
		store:       store,
		serverKey:   serverKey,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pool.Start(ctx); err != nil {
		return fmt.Errorf("start workers: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "# HELP encircuit_evaluations_total Total circuit evaluations\n")
		fmt.Fprintf(w, "# TYPE encircuit_evaluations_total counter\n")
		fmt.Fprintf(w, "encircuit_evaluations_total{status=\"success\"} %d\n", pool.successCount.Load())
		fmt.Fprintf(w, "encircuit_evaluations_total{status=\"failure\"} %d\n", pool.failureCount.Load())
	})

	server := &http.Server{
		Addr:    *metricsAddr,
		Handler: mux,
	}

	go func() {
		log.Printf("Metrics server starting on %s", *metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Metrics server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	log.Printf("Received signal: %s", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Metrics server shutdown error: %v", err)
	}

	if err := pool.Stop(); err != nil {
		log.Printf("Worker pool shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}

// WorkerPool manages a pool of circuit evaluation workers.
type WorkerPool struct {
	numWorkers   int
	gateWorkers  int
	queue        queue.Queue
	store        storage.Store
	serverKey    *encircuit.ServerKey
	wg           sync.WaitGroup
	cancel       context.CancelFunc
	running      atomic.Bool
	successCount atomic.Int64
	failureCount atomic.Int64
}

// Start starts the worker pool.
func (p *WorkerPool) Start(ctx context.Context) error {
	if p.running.Load() {
		return errors.New("pool already running")
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.running.Store(true)

	log.Printf("Starting %d workers", p.numWorkers)

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}

	return nil
}

// Stop gracefully stops the worker pool.
func (p *WorkerPool) Stop() error {
	if !p.running.Load() {
		return nil
	}

	log.Println("Stopping worker pool...")
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Worker pool stopped")
	case <-time.After(30 * time.Second):
		log.Println("Shutdown timeout exceeded")
		return errors.New("shutdown timeout")
	}

	p.running.Store(false)
	return nil
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	log.Printf("Worker %d started", id)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Worker %d stopping", id)
			return
		default:
		}

		job, err := p.queue.Pop(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Printf("Worker %d: failed to pop job: %v", id, err)
			time.Sleep(time.Second)
			continue
		}

		p.processJob(ctx, id, job)
	}
}

func (p *WorkerPool) processJob(ctx context.Context, workerID int, job *queue.Job) {
	job.Status = queue.StatusProcessing
	if err := p.queue.Update(ctx, job); err != nil {
		log.Printf("Worker %d: failed to update job status: %v", workerID, err)
	}

	outputs, err := p.evaluate(ctx, workerID, job)
	if err != nil {
		p.fail(ctx, job, err)
		return
	}

	resultData, err := bitfhe.MarshalCiphertexts(outputs)
	if err != nil {
		p.fail(ctx, job, fmt.Errorf("marshal outputs: %w", err))
		return
	}

	handle, err := p.store.Put(ctx, resultData)
	if err != nil {
		p.fail(ctx, job, fmt.Errorf("store outputs: %w", err))
		return
	}

	job.Status = queue.StatusCompleted
	job.ResultHandle = string(handle)
	if err := p.queue.Update(ctx, job); err != nil {
		log.Printf("Worker %d: failed to update job result: %v", workerID, err)
	}

	p.successCount.Add(1)
	log.Printf("Worker %d: job %s completed", workerID, job.ID)
}

func (p *WorkerPool) evaluate(ctx context.Context, workerID int, job *queue.Job) ([]*encircuit.Ciphertext, error) {
	circuitData, err := p.store.Get(ctx, storage.Handle(job.CircuitHandle))
	if err != nil {
		return nil, fmt.Errorf("load circuit: %w", err)
	}

	circuit := new(encircuit.Circuit)
	if err := circuit.UnmarshalBinary(circuitData); err != nil {
		return nil, fmt.Errorf("unmarshal circuit: %w", err)
	}

	inputsData, err := p.store.Get(ctx, storage.Handle(job.InputsHandle))
	if err != nil {
		return nil, fmt.Errorf("load inputs: %w", err)
	}

	inputs, err := bitfhe.UnmarshalCiphertexts(inputsData)
	if err != nil {
		return nil, fmt.Errorf("unmarshal inputs: %w", err)
	}

	enc, err := circuit.AttachInputs(inputs)
	if err != nil {
		return nil, err
	}

	workers := job.Workers
	if workers <= 0 {
		workers = p.gateWorkers
	}

	cx := circuit.Complexity()
	log.Printf("Worker %d: job %s: %d gates (%d boolean, depth %d), %d gate workers",
		workerID, job.ID, cx.TotalGates, cx.BooleanGates, cx.Depth, workers)

	start := time.Now()
	outputs, err := enc.EvaluateParallel(p.serverKey, workers)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	log.Printf("Worker %d: job %s evaluated in %s", workerID, job.ID, time.Since(start))

	return outputs, nil
}

func (p *WorkerPool) fail(ctx context.Context, job *queue.Job, err error) {
	job.Status = queue.StatusFailed
	job.Error = err.Error()
	if uerr := p.queue.Update(ctx, job); uerr != nil {
		log.Printf("Failed to record job %s failure: %v", job.ID, uerr)
	}
	p.failureCount.Add(1)
}
