package store

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timeLayout is RFC3339 with fixed-width nanoseconds so stored timestamps
// sort lexically in ORDER BY clauses.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore is a Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used
// by tests).
func Open(dataDir string) (*SQLiteStore, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "postforge.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't
// been run yet.
func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		var version int
		if _, err := fmt.Sscanf(entry.Name(), "%d_", &version); err != nil {
			return fmt.Errorf("parsing migration version from %q: %w", entry.Name(), err)
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

const projectColumns = `id, primary_keyword, secondary_keywords, target_audience, content_length, notes, status,
	serp_analysis, seo_plan, generated_content, word_count, seo_score, reading_time, created_at, updated_at`

func (s *SQLiteStore) CreateProject(p Project) (Project, error) {
	now := time.Now().UTC()
	p.ID = uuid.New().String()
	if p.Status == "" {
		p.Status = StatusDraft
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	keywords, err := marshalKeywords(p.SecondaryKeywords)
	if err != nil {
		return Project{}, err
	}

	_, err = s.db.Exec(`
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.PrimaryKeyword, keywords, p.TargetAudience, p.ContentLength, p.Notes, p.Status,
		nullableJSON(p.SerpAnalysis), nullableJSON(p.Seoplan), nullableJSON(p.GeneratedContent),
		p.WordCount, p.SeoScore, p.ReadingTime,
		now.Format(timeLayout), now.Format(timeLayout),
	)
	if err != nil {
		return Project{}, err
	}
	return p, nil
}

func (s *SQLiteStore) GetProject(id string) (Project, error) {
	row := s.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

func (s *SQLiteStore) UpdateProject(id string, u ProjectUpdate) (Project, error) {
	p, err := s.GetProject(id)
	if err != nil {
		return Project{}, err
	}

	applyUpdate(&p, u)
	p.UpdatedAt = time.Now().UTC()

	keywords, err := marshalKeywords(p.SecondaryKeywords)
	if err != nil {
		return Project{}, err
	}

	res, err := s.db.Exec(`
		UPDATE projects SET primary_keyword = ?, secondary_keywords = ?, target_audience = ?,
			content_length = ?, notes = ?, status = ?, serp_analysis = ?, seo_plan = ?,
			generated_content = ?, word_count = ?, seo_score = ?, reading_time = ?, updated_at = ?
		WHERE id = ?`,
		p.PrimaryKeyword, keywords, p.TargetAudience, p.ContentLength, p.Notes, p.Status,
		nullableJSON(p.SerpAnalysis), nullableJSON(p.Seoplan), nullableJSON(p.GeneratedContent),
		p.WordCount, p.SeoScore, p.ReadingTime, p.UpdatedAt.Format(timeLayout), id,
	)
	if err != nil {
		return Project{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Project{}, err
	}
	if n == 0 {
		return Project{}, ErrNotFound
	}
	return p, nil
}

func (s *SQLiteStore) ListProjects() ([]Project, error) {
	rows, err := s.db.Query(`SELECT ` + projectColumns + ` FROM projects ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) DeleteProject(id string) error {
	res, err := s.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) CreateSerpResult(r SerpResult) (SerpResult, error) {
	r.ID = uuid.New().String()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO serp_results (id, keyword, results, analysis, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Keyword, string(r.Results), nullableJSON(r.Analysis), r.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return SerpResult{}, err
	}
	return r, nil
}

func (s *SQLiteStore) LatestSerpResult(keyword string) (SerpResult, error) {
	var r SerpResult
	var results string
	var analysis sql.NullString
	var createdAt string

	err := s.db.QueryRow(`
		SELECT id, keyword, results, analysis, created_at FROM serp_results
		WHERE keyword = ? COLLATE NOCASE
		ORDER BY created_at DESC LIMIT 1`, keyword,
	).Scan(&r.ID, &r.Keyword, &results, &analysis, &createdAt)
	if err == sql.ErrNoRows {
		return SerpResult{}, ErrNotFound
	}
	if err != nil {
		return SerpResult{}, err
	}

	r.Results = json.RawMessage(results)
	if analysis.Valid {
		r.Analysis = json.RawMessage(analysis.String)
	}
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return SerpResult{}, fmt.Errorf("parsing created_at: %w", err)
	}
	return r, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (Project, error) {
	var p Project
	var keywords string
	var serpAnalysis, seoplan, generatedContent sql.NullString
	var wordCount, seoScore, readingTime sql.NullInt64
	var createdAt, updatedAt string

	err := row.Scan(&p.ID, &p.PrimaryKeyword, &keywords, &p.TargetAudience, &p.ContentLength,
		&p.Notes, &p.Status, &serpAnalysis, &seoplan, &generatedContent,
		&wordCount, &seoScore, &readingTime, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return Project{}, ErrNotFound
	}
	if err != nil {
		return Project{}, err
	}

	if err := json.Unmarshal([]byte(keywords), &p.SecondaryKeywords); err != nil {
		return Project{}, fmt.Errorf("parsing secondary_keywords: %w", err)
	}
	if serpAnalysis.Valid {
		p.SerpAnalysis = json.RawMessage(serpAnalysis.String)
	}
	if seoplan.Valid {
		p.Seoplan = json.RawMessage(seoplan.String)
	}
	if generatedContent.Valid {
		p.GeneratedContent = json.RawMessage(generatedContent.String)
	}
	if wordCount.Valid {
		v := int(wordCount.Int64)
		p.WordCount = &v
	}
	if seoScore.Valid {
		v := int(seoScore.Int64)
		p.SeoScore = &v
	}
	if readingTime.Valid {
		v := int(readingTime.Int64)
		p.ReadingTime = &v
	}
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Project{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return Project{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return p, nil
}

func marshalKeywords(keywords []string) (string, error) {
	if keywords == nil {
		return "[]", nil
	}
	b, err := json.Marshal(keywords)
	if err != nil {
		return "", fmt.Errorf("marshaling secondary keywords: %w", err)
	}
	return string(b), nil
}

// nullableJSON maps empty raw JSON to NULL so optional columns stay NULL.
func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
