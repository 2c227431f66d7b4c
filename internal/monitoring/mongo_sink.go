package monitoring

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"port-ops-api-server/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SamplesCollection is where request samples are stored.
const SamplesCollection = "request_samples"

const (
	defaultQueueSize  = 1024
	defaultBatchSize  = 100
	defaultFlushEvery = 5 * time.Second
)

// inserter is the part of *mongo.Collection the sink uses.
type inserter interface {
	InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

// MongoSink queues samples on a buffered channel and writes them in batches
// from a single goroutine. A full queue drops samples.
type MongoSink struct {
	coll       inserter
	queue      chan Sample
	batchSize  int
	flushEvery time.Duration
	dropped    atomic.Int64

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// ConnectMongo opens a client and checks it with a ping.
func ConnectMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

func NewMongoSink(coll *mongo.Collection) *MongoSink {
	return newMongoSink(coll, defaultQueueSize, defaultBatchSize, defaultFlushEvery)
}

func newMongoSink(coll inserter, queueSize, batchSize int, flushEvery time.Duration) *MongoSink {
	s := &MongoSink{
		coll:       coll,
		queue:      make(chan Sample, queueSize),
		batchSize:  batchSize,
		flushEvery: flushEvery,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *MongoSink) Enqueue(sample Sample) {
	select {
	case s.queue <- sample:
	default:
		s.dropped.Add(1)
	}
}

// Dropped is the number of samples lost to a full queue.
func (s *MongoSink) Dropped() int64 { return s.dropped.Load() }

// Close flushes what is queued and stops the writer.
func (s *MongoSink) Close() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}

func (s *MongoSink) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.flushEvery)
	defer ticker.Stop()

	batch := make([]interface{}, 0, s.batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if _, err := s.coll.InsertMany(ctx, batch); err != nil {
			log.Printf("monitoring: mongo flush of %d samples failed: %v", len(batch), err)
		}
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case sample := <-s.queue:
			batch = append(batch, sample)
			if len(batch) >= s.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stop:
			for {
				select {
				case sample := <-s.queue:
					batch = append(batch, sample)
				default:
					flush()
					return
				}
			}
		}
	}
}
