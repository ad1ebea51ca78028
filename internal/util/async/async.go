package async

import (
	"context"
	"fmt"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// Result is the outcome of one task run by RunAll.
type Result struct {
	Name string
	Err  error
}

// RunParallel executes multiple tasks in parallel and returns the first error
// encountered. All tasks are started concurrently, and the function waits for
// all to complete before returning.
//
// Example:
//
//	tasks := []Task{
//	    {Name: "flavors", Func: c.ensureFlavors},
//	    {Name: "images", Func: c.ensureImages},
//	}
//	if err := RunParallel(ctx, tasks); err != nil {
//	    return err
//	}
func RunParallel(ctx context.Context, tasks []Task) error {
	for _, res := range RunAll(ctx, tasks) {
		if res.Err != nil {
			return fmt.Errorf("failed to run %s: %w", res.Name, res.Err)
		}
	}
	return nil
}

// RunAll executes every task in its own goroutine, waits for all of them and
// returns one Result per task in the order the tasks were given.
func RunAll(ctx context.Context, tasks []Task) []Result {
	results := make([]Result, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	done := make(chan int, len(tasks))
	for i, task := range tasks {
		go func() {
			results[i] = Result{Name: task.Name, Err: task.Func(ctx)}
			done <- i
		}()
	}

	for range len(tasks) {
		<-done
	}
	return results
}
