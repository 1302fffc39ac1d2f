package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/KotFed0t/bearhouse_ledger/data/repository"
	"github.com/KotFed0t/bearhouse_ledger/internal/model/dbModel"
	"github.com/KotFed0t/bearhouse_ledger/utils"
)

// GetTaskLastRun returns ok=false when the task never ran.
func (r *Postgres) GetTaskLastRun(ctx context.Context, taskName string) (lastRun time.Time, ok bool, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetTaskLastRun"
	query := `SELECT task_name, last_run FROM task_metadata WHERE task_name = $1`

	slog.Debug("GetTaskLastRun start", slog.String("rqID", rqID), slog.String("op", op), slog.String("task", taskName))
	defer func() {
		if err != nil {
			slog.Error("GetTaskLastRun failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTaskLastRun completed", slog.String("rqID", rqID), slog.String("op", op), slog.Bool("ok", ok))
		}
	}()

	task := dbModel.Task{}
	err = r.txOrDb(ctx).GetContext(ctx, &task, query, taskName)
	if err != nil {
		err = mapError(err)
		if errors.Is(err, repository.ErrNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}

	return task.LastRun, true, nil
}

func (r *Postgres) SetTaskLastRun(ctx context.Context, taskName string, lastRun time.Time) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.SetTaskLastRun"
	query := `
		INSERT INTO task_metadata(task_name, last_run) VALUES ($1, $2)
		ON CONFLICT (task_name) DO UPDATE SET last_run = EXCLUDED.last_run
		`

	slog.Debug("SetTaskLastRun start", slog.String("rqID", rqID), slog.String("op", op), slog.String("task", taskName), slog.Time("lastRun", lastRun))
	defer func() {
		if err != nil {
			slog.Error("SetTaskLastRun failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("SetTaskLastRun completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, taskName, lastRun)
	return err
}
