package interfaces

import "ticker-desk/src/models"

// -----------------------------------------------------------------------------
// IJobQueue accepts background jobs and reports their state.
// -----------------------------------------------------------------------------

type IJobQueue interface {

	// Enqueue schedules job name for stockID and returns the task id.
	Enqueue(name string, stockID int64) (string, error)

	// -----------------------------------------------------------------------------

	// Task returns the current state of a task.
	Task(taskID string) (models.MTask, bool)

	// -----------------------------------------------------------------------------

	// Depth is the number of tasks waiting for a worker.
	Depth() int
}
