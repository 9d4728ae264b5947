package store

import (
	"context"
	"database/sql"
	"time"

	"lookout/internal/services"
)

// InsertTodo records a newly extracted task.
func (s *Store) InsertTodo(ctx context.Context, description, source string, createdAt time.Time) (int64, error) {
	result, err := s.execRetry(ctx,
		`INSERT INTO todos (description, source, created_at, completed) VALUES (?, ?, ?, 0)`,
		description, source, storeTime(createdAt))
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "store", "insert todo", "write row", err)
	}
	return result.LastInsertId()
}

// CompleteTodo marks a todo done. Completing an already completed todo is a no-op.
func (s *Store) CompleteTodo(ctx context.Context, id int64, completedAt time.Time) error {
	result, err := s.execRetry(ctx,
		`UPDATE todos SET completed = 1, completed_at = ? WHERE id = ? AND completed = 0`,
		storeTime(completedAt), id)
	if err != nil {
		return services.Wrap(services.ErrTransient, "store", "complete todo", "update row", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		var exists int
		if scanErr := s.db.QueryRowContext(ctx, `SELECT 1 FROM todos WHERE id = ?`, id).Scan(&exists); scanErr == sql.ErrNoRows {
			return services.Wrap(services.ErrValidation, "store", "complete todo", "no such todo", nil)
		}
	}
	return nil
}

// PendingTodos returns incomplete todos, oldest first.
func (s *Store) PendingTodos(ctx context.Context) ([]Todo, error) {
	return s.listTodos(ctx,
		`SELECT id, description, source, created_at, completed, completed_at FROM todos WHERE completed = 0 ORDER BY created_at ASC`)
}

// Todos returns all todos, newest first.
func (s *Store) Todos(ctx context.Context) ([]Todo, error) {
	return s.listTodos(ctx,
		`SELECT id, description, source, created_at, completed, completed_at FROM todos ORDER BY created_at DESC`)
}

func (s *Store) listTodos(ctx context.Context, query string, args ...any) ([]Todo, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "store", "list todos", "query rows", err)
	}
	defer rows.Close()
	var todos []Todo
	for rows.Next() {
		var todo Todo
		var createdAt string
		var completedAt sql.NullString
		if err := rows.Scan(&todo.ID, &todo.Description, &todo.Source, &createdAt, &todo.Completed, &completedAt); err != nil {
			return nil, services.Wrap(services.ErrTransient, "store", "list todos", "scan row", err)
		}
		if todo.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, services.Wrap(services.ErrTransient, "store", "list todos", "parse timestamp", err)
		}
		if todo.CompletedAt, err = parseNullableTime(completedAt); err != nil {
			return nil, services.Wrap(services.ErrTransient, "store", "list todos", "parse timestamp", err)
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}
