package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	kafkapc "visionapi/internal/infrastructure/kafka"
	"visionapi/internal/usecase"
	"visionapi/pkg/logger"
)

// KafkaController consumes analysis verdicts published by the external
// worker and records them. Messages are committed only after a verdict
// is durably stored, so a crash replays the message instead of losing
// the result.
type KafkaController struct {
	analysis usecase.AnalysisUseCase
	ec       *kafkapc.EventConsumer
	logger   logger.Interface

	commitTimeout  time.Duration
	processTimeout time.Duration

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	started atomic.Bool
}

func New(
	analysis usecase.AnalysisUseCase,
	ec *kafkapc.EventConsumer,
	l logger.Interface,
	commitTimeout time.Duration,
	processTimeout time.Duration,
	workers int,
) *KafkaController {
	return &KafkaController{
		analysis:       analysis,
		ec:             ec,
		logger:         l,
		commitTimeout:  commitTimeout,
		processTimeout: processTimeout,
		workers:        workers,
	}
}

func (c *KafkaController) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("KafkaController - Start - controller already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	tasks := make(chan kafka.Message, c.workers*2)

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(tasks)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(tasks)

		for {
			select {
			case <-c.ctx.Done():
				return
			default:
				// 1. fetch the next verdict
				event, err := c.ec.ReadEvent(c.ctx)
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						c.logger.Error(err, "KafkaController - Start - c.ec.ReadEvent")
					}
					continue
				}

				// 2. hand it to a worker
				select {
				case tasks <- event:
				case <-c.ctx.Done():
					return
				}
			}
		}
	}()

	return nil
}

func (c *KafkaController) processResult(ctx context.Context, event kafka.Message) error {
	var payload AnalysisResultPayload
	err := json.Unmarshal(event.Value, &payload)
	if err != nil {
		return fmt.Errorf("KafkaController - processResult - json.Unmarshal: %w", err)
	}

	switch payload.Status {
	case resultStatusFailed:
		err = c.analysis.MarkFailed(ctx, payload.ImageID, payload.Error)
		if err != nil {
			return fmt.Errorf("KafkaController - processResult - c.analysis.MarkFailed: %w", err)
		}

	case resultStatusCompleted:
		processedAt := time.Now().UTC()
		if payload.ProcessedAt != nil {
			processedAt = *payload.ProcessedAt
		}

		err = c.analysis.SaveResults(ctx, payload.ImageID, payload.toResults(), processedAt)
		if err != nil {
			return fmt.Errorf("KafkaController - processResult - c.analysis.SaveResults: %w", err)
		}

	default:
		return fmt.Errorf("KafkaController - processResult - unknown result status %q", payload.Status)
	}

	return nil
}

func (c *KafkaController) worker(tasks <-chan kafka.Message) {
	defer c.wg.Done()

	for event := range tasks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error(fmt.Errorf("panic %v", r), "KafkaController - worker - panic")
				}
			}()

			processCtx, processCancel := context.WithTimeout(c.ctx, c.processTimeout)
			err := c.processResult(processCtx, event)
			processCancel()
			if err != nil {
				c.logger.Error(err, "KafkaController - worker - c.processResult")

				return
			}

			// commit only after the verdict is stored
			commitCtx, commitCancel := context.WithTimeout(c.ctx, c.commitTimeout)
			err = c.ec.CommitEvent(commitCtx, event)
			commitCancel()
			if err != nil {
				c.logger.Error(err, "KafkaController - worker - c.ec.CommitEvent")
			}
		}()
	}
}

func (c *KafkaController) Shutdown(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		c.ec.Close()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return nil
	}
}
