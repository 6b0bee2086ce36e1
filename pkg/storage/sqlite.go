// Package storage provides the SQLite-backed implementation of agent
// persistence: agent records, per-agent memory, execution history, and
// per-generation evolution statistics.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/XiaoConstantine/evolve-go/pkg/agent"
	"github.com/XiaoConstantine/evolve-go/pkg/errors"
	"github.com/XiaoConstantine/evolve-go/pkg/evolution"
	"github.com/XiaoConstantine/evolve-go/pkg/logging"
)

// executionResultLimit caps the result text stored per execution row.
const executionResultLimit = 1000

// SQLiteStore implements agent.Store and evolution.StatsStore on a single
// SQLite database file. If path is ":memory:", the database lives in-memory.
type SQLiteStore struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string

	initialized sync.Once
}

var (
	_ agent.Store          = (*SQLiteStore)(nil)
	_ evolution.StatsStore = (*SQLiteStore)(nil)
)

// Open opens (creating if necessary) the SQLite database at path.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to open SQLite database"),
			errors.Fields{"path": path},
		)
	}
	// A single connection keeps the foreign_keys pragma in force and makes
	// ":memory:" databases behave with the database/sql pool.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{
		db:   db,
		path: path,
	}
	if err := store.ensureInitialized(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) ensureInitialized() error {
	var initErr error
	s.initialized.Do(func() {
		// WAL for concurrent readers, foreign keys for delete cascades.
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;"); err != nil {
			initErr = errors.Wrap(err, errors.StorageFailed, "failed to configure database")
			return
		}

		query := `
        CREATE TABLE IF NOT EXISTS agents (
            agent_id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            system_prompt TEXT NOT NULL,
            temperature REAL NOT NULL,
            fitness_score REAL DEFAULT 0.0,
            generation INTEGER DEFAULT 0,
            total_tasks INTEGER DEFAULT 0,
            successful_tasks INTEGER DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );

        CREATE TABLE IF NOT EXISTS agent_memory (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            agent_id TEXT NOT NULL,
            task TEXT NOT NULL,
            result TEXT NOT NULL,
            timestamp DATETIME NOT NULL,
            FOREIGN KEY (agent_id) REFERENCES agents (agent_id) ON DELETE CASCADE
        );

        CREATE INDEX IF NOT EXISTS idx_agent_memory_agent
        ON agent_memory(agent_id, timestamp);

        CREATE TABLE IF NOT EXISTS execution_history (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            agent_id TEXT NOT NULL,
            task TEXT NOT NULL,
            result TEXT NOT NULL,
            steps TEXT,
            timestamp DATETIME NOT NULL,
            attempts INTEGER DEFAULT 1,
            success INTEGER DEFAULT 0,
            FOREIGN KEY (agent_id) REFERENCES agents (agent_id) ON DELETE CASCADE
        );

        CREATE INDEX IF NOT EXISTS idx_execution_history_agent
        ON execution_history(agent_id, timestamp);

        CREATE TABLE IF NOT EXISTS evolution_history (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            evolution_id TEXT NOT NULL,
            generation INTEGER NOT NULL,
            best_agent_id TEXT NOT NULL,
            best_agent_name TEXT NOT NULL DEFAULT '',
            avg_fitness REAL NOT NULL,
            max_fitness REAL NOT NULL,
            min_fitness REAL NOT NULL,
            population_size INTEGER NOT NULL DEFAULT 0,
            timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
        );

        CREATE INDEX IF NOT EXISTS idx_evolution_history_run
        ON evolution_history(evolution_id, generation);
        `

		if _, err := s.db.Exec(query); err != nil {
			initErr = errors.Wrap(err, errors.StorageFailed, "failed to initialize database schema")
			return
		}
		logging.GetLogger().Info(context.Background(), "storage initialized at %s", s.path)
	})
	return initErr
}

// SaveAgent upserts the agent record.
func (s *SQLiteStore) SaveAgent(ctx context.Context, record agent.Record) error {
	if err := s.ensureInitialized(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to begin transaction")
	}
	defer rollback(tx)

	query := `
    INSERT INTO agents
        (agent_id, name, system_prompt, temperature, fitness_score,
         generation, total_tasks, successful_tasks, updated_at)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
    ON CONFLICT(agent_id) DO UPDATE SET
        name = excluded.name,
        system_prompt = excluded.system_prompt,
        temperature = excluded.temperature,
        fitness_score = excluded.fitness_score,
        generation = excluded.generation,
        total_tasks = excluded.total_tasks,
        successful_tasks = excluded.successful_tasks,
        updated_at = CURRENT_TIMESTAMP
    `

	_, err = tx.ExecContext(ctx, query,
		record.ID, record.Name, record.SystemPrompt, record.Temperature,
		record.Fitness, record.Generation, record.TotalTasks, record.SuccessfulTasks)
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to save agent"),
			errors.Fields{"agent_id": record.ID},
		)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to commit transaction")
	}
	return nil
}

// GetAgent fetches one agent record by id.
func (s *SQLiteStore) GetAgent(ctx context.Context, id string) (*agent.Record, error) {
	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
    SELECT agent_id, name, system_prompt, temperature, fitness_score,
           generation, total_tasks, successful_tasks
    FROM agents WHERE agent_id = ?`

	var record agent.Record
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID, &record.Name, &record.SystemPrompt, &record.Temperature,
		&record.Fitness, &record.Generation, &record.TotalTasks, &record.SuccessfulTasks)
	if err == sql.ErrNoRows {
		return nil, errors.WithFields(
			errors.New(errors.ResourceNotFound, "agent not found"),
			errors.Fields{"agent_id": id},
		)
	}
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to get agent"),
			errors.Fields{"agent_id": id},
		)
	}
	return &record, nil
}

// ListAgents returns every stored agent record, most recently created first.
func (s *SQLiteStore) ListAgents(ctx context.Context) ([]agent.Record, error) {
	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
    SELECT agent_id, name, system_prompt, temperature, fitness_score,
           generation, total_tasks, successful_tasks
    FROM agents ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "failed to list agents")
	}
	defer rows.Close()

	var records []agent.Record
	for rows.Next() {
		var record agent.Record
		if err := rows.Scan(
			&record.ID, &record.Name, &record.SystemPrompt, &record.Temperature,
			&record.Fitness, &record.Generation, &record.TotalTasks, &record.SuccessfulTasks); err != nil {
			return nil, errors.Wrap(err, errors.StorageFailed, "failed to scan agent row")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "error iterating agent rows")
	}
	return records, nil
}

// DeleteAgent removes an agent and, via cascade, its memory and execution
// history. Reports whether a row was actually deleted.
func (s *SQLiteStore) DeleteAgent(ctx context.Context, id string) (bool, error) {
	if err := s.ensureInitialized(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM agents WHERE agent_id = ?", id)
	if err != nil {
		return false, errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to delete agent"),
			errors.Fields{"agent_id": id},
		)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, errors.StorageFailed, "failed to get affected rows count")
	}
	return affected > 0, nil
}

// SaveExecution appends one execution record. The result text is capped and
// the tool steps are stored JSON-encoded.
func (s *SQLiteStore) SaveExecution(ctx context.Context, agentID string, record agent.ExecutionRecord) error {
	if err := s.ensureInitialized(); err != nil {
		return err
	}

	steps, err := json.Marshal(record.Steps)
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to marshal tool steps"),
			errors.Fields{"agent_id": agentID},
		)
	}

	result := record.Result
	if len(result) > executionResultLimit {
		result = result[:executionResultLimit]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
    INSERT INTO execution_history (agent_id, task, result, steps, timestamp, attempts, success)
    VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		agentID, record.Task, result, string(steps),
		record.Timestamp.UTC().Format(time.RFC3339Nano), record.Attempts, boolToInt(record.Success))
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to save execution"),
			errors.Fields{"agent_id": agentID},
		)
	}
	return nil
}

// ExecutionHistory returns up to limit execution records for an agent, most
// recent first. limit <= 0 means no limit.
func (s *SQLiteStore) ExecutionHistory(ctx context.Context, agentID string, limit int) ([]agent.ExecutionRecord, error) {
	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
    SELECT task, result, steps, timestamp, attempts, success
    FROM execution_history
    WHERE agent_id = ?
    ORDER BY timestamp DESC, id DESC
    LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, agentID, sqlLimit(limit))
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to query execution history"),
			errors.Fields{"agent_id": agentID},
		)
	}
	defer rows.Close()

	var records []agent.ExecutionRecord
	for rows.Next() {
		var (
			record    agent.ExecutionRecord
			steps     sql.NullString
			timestamp string
			success   int
		)
		if err := rows.Scan(&record.Task, &record.Result, &steps, &timestamp, &record.Attempts, &success); err != nil {
			return nil, errors.Wrap(err, errors.StorageFailed, "failed to scan execution row")
		}
		record.Success = success != 0
		record.Timestamp = parseTimestamp(timestamp)
		if steps.Valid && steps.String != "" {
			if err := json.Unmarshal([]byte(steps.String), &record.Steps); err != nil {
				return nil, errors.Wrap(err, errors.InvalidResponse, "failed to unmarshal tool steps")
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "error iterating execution rows")
	}
	return records, nil
}

// SaveMemory appends one task/result memory entry for an agent.
func (s *SQLiteStore) SaveMemory(ctx context.Context, agentID, task, result string) error {
	if err := s.ensureInitialized(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
    INSERT INTO agent_memory (agent_id, task, result, timestamp)
    VALUES (?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query, agentID, task, result,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to save memory"),
			errors.Fields{"agent_id": agentID},
		)
	}
	return nil
}

// AgentMemory returns up to limit memory entries for an agent, most recent
// first. limit <= 0 means no limit.
func (s *SQLiteStore) AgentMemory(ctx context.Context, agentID string, limit int) ([]agent.MemoryEntry, error) {
	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
    SELECT task, result, timestamp
    FROM agent_memory
    WHERE agent_id = ?
    ORDER BY timestamp DESC, id DESC
    LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, agentID, sqlLimit(limit))
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to query agent memory"),
			errors.Fields{"agent_id": agentID},
		)
	}
	defer rows.Close()

	var entries []agent.MemoryEntry
	for rows.Next() {
		var (
			entry     agent.MemoryEntry
			timestamp string
		)
		if err := rows.Scan(&entry.Task, &entry.Result, &timestamp); err != nil {
			return nil, errors.Wrap(err, errors.StorageFailed, "failed to scan memory row")
		}
		entry.Timestamp = parseTimestamp(timestamp)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "error iterating memory rows")
	}
	return entries, nil
}

// SaveEvolutionStats appends one generation's statistics for a run.
func (s *SQLiteStore) SaveEvolutionStats(ctx context.Context, runID string, stats evolution.GenerationStats) error {
	if err := s.ensureInitialized(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
    INSERT INTO evolution_history
        (evolution_id, generation, best_agent_id, best_agent_name,
         avg_fitness, max_fitness, min_fitness, population_size, timestamp)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	timestamp := stats.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	_, err := s.db.ExecContext(ctx, query,
		runID, stats.Generation, stats.BestAgentID, stats.BestAgentName,
		stats.AvgFitness, stats.MaxFitness, stats.MinFitness, stats.PopulationSize,
		timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to save evolution stats"),
			errors.Fields{"evolution_id": runID, "generation": stats.Generation},
		)
	}
	return nil
}

// EvolutionHistory returns a run's per-generation statistics in generation
// order.
func (s *SQLiteStore) EvolutionHistory(ctx context.Context, runID string) ([]evolution.GenerationStats, error) {
	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
    SELECT generation, best_agent_id, best_agent_name,
           avg_fitness, max_fitness, min_fitness, population_size, timestamp
    FROM evolution_history
    WHERE evolution_id = ?
    ORDER BY generation`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to query evolution history"),
			errors.Fields{"evolution_id": runID},
		)
	}
	defer rows.Close()

	var history []evolution.GenerationStats
	for rows.Next() {
		var (
			stats     evolution.GenerationStats
			timestamp string
		)
		if err := rows.Scan(&stats.Generation, &stats.BestAgentID, &stats.BestAgentName,
			&stats.AvgFitness, &stats.MaxFitness, &stats.MinFitness, &stats.PopulationSize,
			&timestamp); err != nil {
			return nil, errors.Wrap(err, errors.StorageFailed, "failed to scan evolution row")
		}
		stats.Timestamp = parseTimestamp(timestamp)
		history = append(history, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "error iterating evolution rows")
	}
	return history, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to close database")
	}
	return nil
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		logging.GetLogger().Error(context.Background(), "failed to rollback transaction: %v", err)
	}
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
