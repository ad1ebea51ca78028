// Package async provides utilities for parallel task execution with
// error collection.
//
// [RunParallel] executes operations concurrently and returns the first error
// once every task has finished. [RunAll] executes them concurrently and
// reports every task's outcome, for stages where one failure must not hide
// the others.
package async
