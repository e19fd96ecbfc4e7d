package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/israelbalog04/acer-music-sub000/gate"
	"github.com/israelbalog04/acer-music-sub000/resilience"
)

func ExampleDo() {
	exec := resilience.NewExecutor(gate.New(2), resilience.WithPolicy(resilience.RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		Timeout:     time.Second,
	}))

	attempts := 0
	v, err := resilience.Do(context.Background(), exec, func(ctx context.Context) (string, error) {
		attempts++
		if attempts == 1 {
			return "", errors.New("connection reset by peer")
		}
		return "events", nil
	})

	fmt.Println(v, err, attempts)
	// Output:
	// events <nil> 2
}

func ExampleClassify() {
	for _, err := range []error{
		errors.New("Can't reach database server"),
		errors.New(`prepared statement "s0" already exists`),
		errors.New("violates foreign key constraint"),
	} {
		fmt.Println(resilience.Classify(err))
	}
	// Output:
	// transient
	// stale_session
	// fatal
}

func ExampleWithOnRetry() {
	exec := resilience.NewExecutor(gate.New(1),
		resilience.WithPolicy(resilience.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}),
		resilience.WithOnRetry(func(ev resilience.RetryEvent) {
			fmt.Printf("attempt %d failed (%s), retrying in %v\n", ev.Attempt, ev.Class, ev.Delay)
		}),
	)

	err := exec.Execute(context.Background(), func(ctx context.Context) error {
		return errors.New("pooler dropped the client")
	})
	fmt.Println(err)
	// Output:
	// attempt 1 failed (transient), retrying in 1ms
	// attempt 2 failed (transient), retrying in 2ms
	// pooler dropped the client
}
