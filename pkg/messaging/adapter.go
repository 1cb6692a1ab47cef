package messaging

import (
	"context"
	"fmt"
	"sync"
)

// Handler processes one payload received on channel.
type Handler func(channel string, payload []byte) error

// Consume subscribes to every channel and calls handler for each payload
// until ctx is done. Handler errors go to onError and do not stop delivery.
// If any subscription fails the ones already made are cancelled and drained
// before the error is returned.
func Consume(ctx context.Context, broker Broker, channels []string, handler Handler, onError func(channel string, err error)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for _, channel := range channels {
		msgs, err := broker.Subscribe(ctx, channel)
		if err != nil {
			cancel()
			wg.Wait()
			return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
		}

		wg.Add(1)
		go func(channel string, msgs <-chan []byte) {
			defer wg.Done()
			for msg := range msgs {
				if err := handler(channel, msg); err != nil && onError != nil {
					onError(channel, err)
				}
			}
		}(channel, msgs)
	}

	wg.Wait()
	return ctx.Err()
}
