package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/moldplan/moldplan/internal/domain"
)

// PlanRun is the persisted header row for one Optimize call.
type PlanRun struct {
	ID          string
	Status      string
	Score       float64
	Error       string
	CreatedAt   string
	CompletedAt sql.NullString
}

const (
	PlanStatusPending   = "PENDING"
	PlanStatusRunning   = "RUNNING"
	PlanStatusCompleted = "COMPLETED"
	PlanStatusFailed    = "FAILED"
)

// InsertPlanRun records a new plan run in PENDING status.
func (db *DB) InsertPlanRun(id string, req domain.PlanRequest) error {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal plan request: %w", err)
	}
	_, err = db.db.Exec(`
		INSERT INTO plan_runs (id, status, request_json)
		VALUES (?, ?, ?)
	`, id, PlanStatusPending, string(reqJSON))
	return err
}

// MarkPlanRunning transitions a plan run to RUNNING.
func (db *DB) MarkPlanRunning(id string) error {
	_, err := db.db.Exec(`UPDATE plan_runs SET status = ? WHERE id = ?`, PlanStatusRunning, id)
	return err
}

// MarkPlanFailed records a plan run's failure.
func (db *DB) MarkPlanFailed(id string, cause error) error {
	_, err := db.db.Exec(`
		UPDATE plan_runs SET status = ?, error = ?, completed_at = datetime('now') WHERE id = ?
	`, PlanStatusFailed, cause.Error(), id)
	return err
}

// CompletePlanRun stores a completed plan's result and all of its tasks and
// unmet demand in one transaction.
func (db *DB) CompletePlanRun(id string, result domain.PlanResult) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		UPDATE plan_runs SET status = ?, score = ?, completed_at = datetime('now') WHERE id = ?
	`, PlanStatusCompleted, result.Score, id); err != nil {
		return fmt.Errorf("update plan_runs: %w", err)
	}

	for seq, tk := range result.Assignments {
		if _, err := tx.Exec(`
			INSERT INTO plan_tasks (
				plan_id, seq, day, machine_id, machine_name, sequence_in_day, task_type,
				used_hours, start_hour, end_hour, utilization,
				mold_id, component_id, component_name, color, produced_qty,
				from_mold_id, to_mold_id, from_color, to_color
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, id, seq, tk.Day, tk.MachineID, tk.MachineName, tk.SequenceInDay, string(tk.TaskType),
			tk.UsedHours, tk.StartHour, tk.EndHour, tk.Utilization,
			nullify(tk.MoldID), nullify(tk.ComponentID), nullify(tk.ComponentName), nullify(tk.Color), tk.ProducedQty,
			nullify(tk.FromMoldID), nullify(tk.ToMoldID), nullify(tk.FromColor), nullify(tk.ToColor),
		); err != nil {
			return fmt.Errorf("insert plan_tasks[%d]: %w", seq, err)
		}
	}

	for cid, qty := range result.Unmet {
		if _, err := tx.Exec(`
			INSERT INTO plan_unmet (plan_id, component_id, quantity) VALUES (?, ?, ?)
		`, id, cid, qty); err != nil {
			return fmt.Errorf("insert plan_unmet[%s]: %w", cid, err)
		}
	}

	return tx.Commit()
}

func nullify(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// GetPlanRun fetches one plan run's header row.
func (db *DB) GetPlanRun(id string) (PlanRun, error) {
	var run PlanRun
	var score sql.NullFloat64
	var errMsg sql.NullString
	err := db.db.QueryRow(`
		SELECT id, status, score, error, created_at, completed_at FROM plan_runs WHERE id = ?
	`, id).Scan(&run.ID, &run.Status, &score, &errMsg, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		return PlanRun{}, err
	}
	run.Score = score.Float64
	run.Error = errMsg.String
	return run, nil
}

// ListPlanTasks returns every task recorded for a plan run, in emission
// order.
func (db *DB) ListPlanTasks(id string) ([]domain.Task, error) {
	rows, err := db.db.Query(`
		SELECT day, machine_id, machine_name, sequence_in_day, task_type,
		       used_hours, start_hour, end_hour, utilization,
		       mold_id, component_id, component_name, color, produced_qty,
		       from_mold_id, to_mold_id, from_color, to_color
		FROM plan_tasks WHERE plan_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var tk domain.Task
		var taskType string
		var moldID, componentID, componentName, color, fromMoldID, toMoldID, fromColor, toColor sql.NullString
		var producedQty sql.NullInt64
		if err := rows.Scan(
			&tk.Day, &tk.MachineID, &tk.MachineName, &tk.SequenceInDay, &taskType,
			&tk.UsedHours, &tk.StartHour, &tk.EndHour, &tk.Utilization,
			&moldID, &componentID, &componentName, &color, &producedQty,
			&fromMoldID, &toMoldID, &fromColor, &toColor,
		); err != nil {
			return nil, err
		}
		tk.TaskType = domain.TaskType(taskType)
		tk.MoldID = moldID.String
		tk.ComponentID = componentID.String
		tk.ComponentName = componentName.String
		tk.Color = color.String
		tk.ProducedQty = int(producedQty.Int64)
		tk.FromMoldID = fromMoldID.String
		tk.ToMoldID = toMoldID.String
		tk.FromColor = fromColor.String
		tk.ToColor = toColor.String
		tasks = append(tasks, tk)
	}
	return tasks, rows.Err()
}

// ListPlanUnmet returns the unmet-demand map recorded for a plan run.
func (db *DB) ListPlanUnmet(id string) (map[string]int, error) {
	rows, err := db.db.Query(`SELECT component_id, quantity FROM plan_unmet WHERE plan_id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	unmet := make(map[string]int)
	for rows.Next() {
		var cid string
		var qty int
		if err := rows.Scan(&cid, &qty); err != nil {
			return nil, err
		}
		unmet[cid] = qty
	}
	return unmet, rows.Err()
}
