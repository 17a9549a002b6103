package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/bgf/dashboard-api/internal/api/metrics"
	"github.com/bgf/dashboard-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	sendTimeout    = 30 * time.Second
)

// Dispatcher routes companion emails to a fixed set of workers using
// consistent hashing on the recipient's user id, keeping each user's mail in
// order.
type Dispatcher struct {
	workers []chan ports.EmailMessage
	mailer  ports.Mailer
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, mailer ports.Mailer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.EmailMessage, numWorkers),
		mailer:  mailer,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.EmailMessage, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands msg to the worker responsible for its user. It never blocks:
// false means the worker's buffer is full and the email was dropped.
func (d *Dispatcher) Enqueue(msg ports.EmailMessage) bool {
	idx := d.shardIndex(msg.UserID)
	select {
	case d.workers[idx] <- msg:
		metrics.EmailQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return true
	default:
		return false
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.EmailMessage) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			metrics.EmailQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.send(ctx, id, msg)
		}
	}
}

func (d *Dispatcher) send(ctx context.Context, worker int, msg ports.EmailMessage) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	start := time.Now()
	err := d.mailer.Send(sendCtx, msg)
	metrics.EmailSendDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.EmailsSentTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("user_id", msg.UserID).
			Int("worker_id", worker).
			Msg("companion email failed")
		return
	}
	metrics.EmailsSentTotal.WithLabelValues("sent").Inc()
}
