package dbpool_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/israelbalog04/acer-music-sub000/dbpool"
	"github.com/israelbalog04/acer-music-sub000/resilience"
	"github.com/israelbalog04/acer-music-sub000/stats"
)

// flakyPinger fails its first pings with a connection error.
type flakyPinger struct {
	dbpool.Client
	failures int
}

func (c *flakyPinger) Ping(context.Context) error {
	if c.failures > 0 {
		c.failures--
		return errors.New("read tcp: connection reset by peer")
	}
	return nil
}

func ExamplePool_Ping() {
	rec := stats.NewMemoryRecorder()
	pool, err := dbpool.New(&flakyPinger{failures: 2}, dbpool.Config{
		Capacity: 2,
		Policy:   resilience.RetryPolicy{BaseDelay: time.Millisecond},
	}, dbpool.WithRecorder(rec))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	err = pool.Ping(context.Background())
	fmt.Println("ping:", err)
	fmt.Println("attempts:", rec.Total().Attempts)
	fmt.Printf("%+v\n", pool.Stats())
	// Output:
	// ping: <nil>
	// attempts: 3
	// {Active:0 Capacity:2 Queued:0 Available:2 MaxActive:1}
}

func ExampleDo() {
	pool, _ := dbpool.New(&flakyPinger{}, dbpool.Config{Capacity: 1})

	v, err := dbpool.Do(context.Background(), pool, "health", func(ctx context.Context, c dbpool.Client) (string, error) {
		if err := c.Ping(ctx); err != nil {
			return "", err
		}
		return "ok", nil
	})
	fmt.Println(v, err)
	// Output:
	// ok <nil>
}
