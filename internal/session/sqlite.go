package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SQLiteStore keeps sessions in a SQLite file through the sqlite3 CLI.
type SQLiteStore struct {
	dbPath string
	now    func() time.Time
}

func NewSQLiteStore(dbPath string) *SQLiteStore {
	return &SQLiteStore{dbPath: dbPath, now: time.Now}
}

// OpenSQLiteStore creates the store and makes sure its schema exists.
func OpenSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if _, err := exec.LookPath("sqlite3"); err != nil {
		return nil, fmt.Errorf("sqlite3 binary not found: %w", err)
	}
	s := NewSQLiteStore(dbPath)
	if err := s.InitSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) InitSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS console_sessions (
			browser_id TEXT PRIMARY KEY,
			record_id TEXT NOT NULL,
			user_id INTEGER NOT NULL DEFAULT 0,
			access_token TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT '',
			employee_id TEXT NOT NULL DEFAULT '',
			initials TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_console_sessions_expires_at ON console_sessions(expires_at);`,
	}
	for _, stmt := range statements {
		if err := withSQLiteRetry(func() error {
			_, err := s.exec(ctx, stmt, nil)
			return err
		}); err != nil {
			return fmt.Errorf("init session schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Put(ctx context.Context, browserID string, rec Record) error {
	rec = prepare(rec)
	params := map[string]string{
		"browser_id":   browserID,
		"record_id":    rec.ID,
		"user_id":      strconv.FormatInt(rec.UserID, 10),
		"access_token": rec.AccessToken,
		"name":         rec.Name,
		"role":         rec.Role,
		"employee_id":  rec.EmployeeID,
		"initials":     rec.Initials,
		"created_at":   strconv.FormatInt(rec.CreatedAt.UTC().Unix(), 10),
		"expires_at":   strconv.FormatInt(unixOrZero(rec.ExpiresAt), 10),
	}
	return withSQLiteRetry(func() error {
		_, err := s.exec(ctx, `
			INSERT INTO console_sessions (browser_id, record_id, user_id, access_token, name, role, employee_id, initials, created_at, expires_at)
			VALUES (@browser_id, @record_id, CAST(@user_id AS INTEGER), @access_token, @name, @role, @employee_id, @initials, CAST(@created_at AS INTEGER), CAST(@expires_at AS INTEGER))
			ON CONFLICT(browser_id) DO UPDATE SET
				record_id = excluded.record_id,
				user_id = excluded.user_id,
				access_token = excluded.access_token,
				name = excluded.name,
				role = excluded.role,
				employee_id = excluded.employee_id,
				initials = excluded.initials,
				created_at = excluded.created_at,
				expires_at = excluded.expires_at;
		`, params)
		return err
	})
}

func (s *SQLiteStore) Get(ctx context.Context, browserID string) (Record, error) {
	rows, err := s.query(ctx, `
		SELECT record_id, user_id, access_token, name, role, employee_id, initials, created_at, expires_at
		FROM console_sessions
		WHERE browser_id = @browser_id
		LIMIT 1;
	`, map[string]string{"browser_id": browserID})
	if err != nil {
		return Record{}, err
	}
	if len(rows) == 0 {
		return Record{}, ErrNotFound
	}
	rec, err := recordFromRow(rows[0])
	if err != nil {
		return Record{}, err
	}
	if rec.Expired(s.now()) {
		_ = s.Delete(ctx, browserID)
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, browserID string) error {
	return withSQLiteRetry(func() error {
		_, err := s.exec(ctx, `DELETE FROM console_sessions WHERE browser_id = @browser_id;`, map[string]string{"browser_id": browserID})
		return err
	})
}

func (s *SQLiteStore) Sweep(ctx context.Context) (int, error) {
	var rows []map[string]any
	err := withSQLiteRetry(func() error {
		var err error
		rows, err = s.query(ctx, `
			DELETE FROM console_sessions WHERE expires_at > 0 AND expires_at <= CAST(@now AS INTEGER);
			SELECT changes() AS removed;
		`, map[string]string{"now": strconv.FormatInt(s.now().UTC().Unix(), 10)})
		return err
	})
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	removed, err := valueAsInt64(rows[0]["removed"])
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}

func recordFromRow(row map[string]any) (Record, error) {
	var rec Record
	var err error
	if rec.ID, err = valueAsString(row["record_id"]); err != nil {
		return Record{}, err
	}
	if rec.UserID, err = valueAsInt64(row["user_id"]); err != nil {
		return Record{}, err
	}
	if rec.AccessToken, err = valueAsString(row["access_token"]); err != nil {
		return Record{}, err
	}
	if rec.Name, err = valueAsString(row["name"]); err != nil {
		return Record{}, err
	}
	if rec.Role, err = valueAsString(row["role"]); err != nil {
		return Record{}, err
	}
	if rec.EmployeeID, err = valueAsString(row["employee_id"]); err != nil {
		return Record{}, err
	}
	if rec.Initials, err = valueAsString(row["initials"]); err != nil {
		return Record{}, err
	}
	createdAt, err := valueAsInt64(row["created_at"])
	if err != nil {
		return Record{}, err
	}
	expiresAt, err := valueAsInt64(row["expires_at"])
	if err != nil {
		return Record{}, err
	}
	rec.CreatedAt = time.Unix(createdAt, 0).UTC()
	if expiresAt > 0 {
		rec.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	}
	return rec, nil
}

func (s *SQLiteStore) exec(ctx context.Context, statement string, params map[string]string) (string, error) {
	return s.run(ctx, statement, params, false)
}

func (s *SQLiteStore) query(ctx context.Context, statement string, params map[string]string) ([]map[string]any, error) {
	out, err := s.run(ctx, statement, params, true)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(out)
	if trimmed == "" {
		return []map[string]any{}, nil
	}
	var rows []map[string]any
	if err := json.Unmarshal([]byte(trimmed), &rows); err != nil {
		return nil, fmt.Errorf("decode sqlite3 rows: %w", err)
	}
	return rows, nil
}

func (s *SQLiteStore) run(ctx context.Context, statement string, params map[string]string, jsonMode bool) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()

	args := []string{s.dbPath, ".timeout 5000"}
	if jsonMode {
		args = append(args, ".mode json")
	}
	args = append(args, bindSQLParams(statement, params))

	output, err := exec.CommandContext(runCtx, "sqlite3", args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("sqlite3 command failed: %w (%s)", err, strings.TrimSpace(string(output)))
	}
	return string(output), nil
}

var sqlParamPattern = regexp.MustCompile(`@[A-Za-z_][A-Za-z0-9_]*`)

// bindSQLParams replaces each @name in one pass over statement, so bound
// values are never rescanned for further placeholders.
func bindSQLParams(statement string, params map[string]string) string {
	if len(params) == 0 {
		return statement
	}
	return sqlParamPattern.ReplaceAllStringFunc(statement, func(token string) string {
		value, ok := params[token[1:]]
		if !ok {
			return token
		}
		return sqliteStringLiteral(value)
	})
}

func withSQLiteRetry(fn func() error) error {
	const maxAttempts = 3
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		lower := strings.ToLower(err.Error())
		if !strings.Contains(lower, "database is locked") && !strings.Contains(lower, "database is busy") {
			return err
		}
		if attempt < maxAttempts {
			time.Sleep(time.Duration(attempt) * 125 * time.Millisecond)
		}
	}
	return err
}

func sqliteStringLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func valueAsString(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64:
		return strconv.FormatInt(int64(v), 10), nil
	default:
		return "", fmt.Errorf("unexpected type for string: %T", value)
	}
}

func valueAsInt64(value any) (int64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected type for int64: %T", value)
	}
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().Unix()
}
