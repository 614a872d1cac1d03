package metricstore

import (
	"fmt"

	"github.com/devpulse/devpulse/schema"
)

// BeginRun records the start of an ingestion pass for one repository.
func (s *Store) BeginRun(run schema.IngestionRun) error {
	quoted := quoteTableName(ingestionRunsTable, s.backend)
	query := fmt.Sprintf(`INSERT INTO %s (run_id, repo_id, started_at, config_params)
		VALUES (%s, %s, %s, %s)`, quoted, s.ph(1), s.ph(2), s.ph(3), s.ph(4))

	_, err := s.db.Exec(query, run.RunID, run.RepoID, formatTimestamp(run.StartedAt), run.Params)
	if err != nil {
		return fmt.Errorf("failed to record run start for %s: %w", run.RepoID, err)
	}
	return nil
}

// EndRun records completion counters for a previously started pass.
func (s *Store) EndRun(run schema.IngestionRun) error {
	if run.FinishedAt == nil {
		return fmt.Errorf("run %s for %s has no finish time", run.RunID, run.RepoID)
	}

	quoted := quoteTableName(ingestionRunsTable, s.backend)
	query := fmt.Sprintf(`UPDATE %s SET finished_at = %s, events_seen = %s, events_skipped = %s, days_written = %s
		WHERE run_id = %s AND repo_id = %s`,
		quoted, s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5), s.ph(6))

	result, err := s.db.Exec(query, formatTimestamp(*run.FinishedAt),
		run.EventsSeen, run.EventsSkipped, run.DaysWritten, run.RunID, run.RepoID)
	if err != nil {
		return fmt.Errorf("failed to record run finish for %s: %w", run.RepoID, err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("no started run found for %s (run %s)", run.RepoID, run.RunID)
	}
	return nil
}
