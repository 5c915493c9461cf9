// Package database is the append-only event store for mood entries and tarot
// readings, backed by a single SQLite file.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/korjavin/catmoodbot/models"
)

const (
	// dateLayout is how timestamps are stored, in the store's location
	dateLayout = "2006-01-02 15:04:05"
	dayLayout  = "2006-01-02"
)

// DB handles all database operations
type DB struct {
	conn   *sql.DB
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a DB
type Option func(*DB)

// WithLocation sets the time zone used for stored dates and day boundaries
func WithLocation(loc *time.Location) Option {
	return func(db *DB) {
		if loc != nil {
			db.loc = loc
		}
	}
}

// WithClock replaces the wall clock used to timestamp new entries
func WithClock(now func() time.Time) Option {
	return func(db *DB) {
		if now != nil {
			db.now = now
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(db *DB) {
		if logger != nil {
			db.logger = logger
		}
	}
}

// New opens the store at dbPath and creates the schema if it is missing
func New(dbPath string, opts ...Option) (*DB, error) {
	if file := dbFile(dbPath); file != "" && file != ":memory:" {
		if dir := filepath.Dir(file); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, &models.StorageError{Op: "open", Err: err}
			}
		}
	}

	conn, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, &models.StorageError{Op: "open", Err: err}
	}
	// One process, one writer.
	conn.SetMaxOpenConns(1)

	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, &models.StorageError{Op: "open", Err: err}
	}

	if err = createTables(conn); err != nil {
		conn.Close()
		return nil, &models.ConfigError{Source: dbPath, Msg: "create schema", Err: err}
	}

	db := &DB{
		conn:   conn,
		loc:    time.Local,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(db)
	}
	return db, nil
}

// dsn adds the busy timeout to dbPath, which may be a plain path or a
// file: URI that already carries query parameters
func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_busy_timeout=5000"
}

// dbFile strips the file: scheme and query parameters from dbPath
func dbFile(dbPath string) string {
	file := strings.TrimPrefix(dbPath, "file:")
	if i := strings.Index(file, "?"); i >= 0 {
		file = file[:i]
	}
	return file
}

// Close closes the database connection
func (db *DB) Close() error {
	if err := db.conn.Close(); err != nil {
		return &models.StorageError{Op: "close", Err: err}
	}
	db.logger.Debug("database closed")
	return nil
}

// createTables creates the necessary tables if they don't exist
func createTables(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS mood_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL,
			category TEXT NOT NULL,
			score INTEGER NOT NULL,
			answers TEXT NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = conn.Exec(`
		CREATE TABLE IF NOT EXISTS tarot_readings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL,
			card1 TEXT NOT NULL DEFAULT '',
			card2 TEXT NOT NULL DEFAULT '',
			card3 TEXT NOT NULL DEFAULT '',
			prediction_love TEXT NOT NULL DEFAULT '',
			prediction_career TEXT NOT NULL DEFAULT '',
			prediction_finance TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return err
	}

	_, err = conn.Exec(`CREATE INDEX IF NOT EXISTS idx_mood_entries_date ON mood_entries(date)`)
	return err
}

func (db *DB) timestamp() string {
	return db.now().In(db.loc).Format(dateLayout)
}

func (db *DB) parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, db.loc)
}

// SaveMoodEntry appends a completed quiz and returns its id
func (db *DB) SaveMoodEntry(ctx context.Context, category string, total int, answers []int) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		"INSERT INTO mood_entries (date, category, score, answers) VALUES (?, ?, ?, ?)",
		db.timestamp(), category, total, encodeAnswers(answers),
	)
	if err != nil {
		return 0, &models.StorageError{Op: "save mood entry", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &models.StorageError{Op: "save mood entry", Err: err}
	}
	db.logger.Debug("mood entry saved", zap.Int64("id", id), zap.String("category", category), zap.Int("score", total))
	return id, nil
}

// SaveTarotReading appends a reading and returns it as stored. Missing card
// names are stored as empty strings and cards beyond the third are ignored.
func (db *DB) SaveTarotReading(ctx context.Context, cards []string, p models.Predictions) (models.TarotReading, error) {
	r := models.TarotReading{Predictions: p}
	copy(r.Cards[:], cards)
	date := db.timestamp()

	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO tarot_readings (date, card1, card2, card3, prediction_love, prediction_career, prediction_finance)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		date, r.Cards[0], r.Cards[1], r.Cards[2], p.Love, p.Career, p.Finance,
	)
	if err != nil {
		return models.TarotReading{}, &models.StorageError{Op: "save tarot reading", Err: err}
	}
	if r.ID, err = res.LastInsertId(); err != nil {
		return models.TarotReading{}, &models.StorageError{Op: "save tarot reading", Err: err}
	}
	if r.CreatedAt, err = db.parseDate(date); err != nil {
		return models.TarotReading{}, &models.StorageError{Op: "save tarot reading", Err: err}
	}
	db.logger.Debug("tarot reading saved", zap.Int64("id", r.ID))
	return r, nil
}

// sqlLimit maps a non-positive limit to SQLite's "no limit"
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

// GetMoodHistory returns up to limit mood entries, newest first.
// A non-positive limit returns the whole history.
func (db *DB) GetMoodHistory(ctx context.Context, limit int) ([]models.MoodEntry, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, date, category, score, answers
		FROM mood_entries
		ORDER BY date DESC, id DESC
		LIMIT ?`, sqlLimit(limit))
	if err != nil {
		return nil, &models.StorageError{Op: "mood history", Err: err}
	}
	defer rows.Close()

	var result []models.MoodEntry
	for rows.Next() {
		var e models.MoodEntry
		var date, answers string
		if err := rows.Scan(&e.ID, &date, &e.Category, &e.Score, &answers); err != nil {
			return nil, &models.StorageError{Op: "mood history", Err: err}
		}
		if e.CreatedAt, err = db.parseDate(date); err != nil {
			return nil, &models.StorageError{Op: "mood history", Err: err}
		}
		if e.Answers, err = decodeAnswers(answers); err != nil {
			return nil, &models.StorageError{Op: "mood history", Err: err}
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.StorageError{Op: "mood history", Err: err}
	}
	return result, nil
}

// GetTarotHistory returns up to limit readings, newest first.
// A non-positive limit returns the whole history.
func (db *DB) GetTarotHistory(ctx context.Context, limit int) ([]models.TarotReading, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, date, card1, card2, card3, prediction_love, prediction_career, prediction_finance
		FROM tarot_readings
		ORDER BY date DESC, id DESC
		LIMIT ?`, sqlLimit(limit))
	if err != nil {
		return nil, &models.StorageError{Op: "tarot history", Err: err}
	}
	defer rows.Close()

	var result []models.TarotReading
	for rows.Next() {
		var r models.TarotReading
		var date string
		err := rows.Scan(&r.ID, &date, &r.Cards[0], &r.Cards[1], &r.Cards[2],
			&r.Predictions.Love, &r.Predictions.Career, &r.Predictions.Finance)
		if err != nil {
			return nil, &models.StorageError{Op: "tarot history", Err: err}
		}
		if r.CreatedAt, err = db.parseDate(date); err != nil {
			return nil, &models.StorageError{Op: "tarot history", Err: err}
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.StorageError{Op: "tarot history", Err: err}
	}
	return result, nil
}

// GetMoodStatistics counts entries per category, most frequent first
func (db *DB) GetMoodStatistics(ctx context.Context) ([]models.CategoryCount, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT category, COUNT(*) AS count
		FROM mood_entries
		GROUP BY category
		ORDER BY count DESC, category ASC`)
	if err != nil {
		return nil, &models.StorageError{Op: "mood statistics", Err: err}
	}
	defer rows.Close()

	var result []models.CategoryCount
	for rows.Next() {
		var c models.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, &models.StorageError{Op: "mood statistics", Err: err}
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.StorageError{Op: "mood statistics", Err: err}
	}
	return result, nil
}

// CountMoodEntries returns the number of stored mood entries
func (db *DB) CountMoodEntries(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM mood_entries").Scan(&n); err != nil {
		return 0, &models.StorageError{Op: "count mood entries", Err: err}
	}
	return n, nil
}

// GetMoodTrend averages scores per calendar day over the last days days,
// today included. Days without entries are omitted.
func (db *DB) GetMoodTrend(ctx context.Context, days int) ([]models.TrendPoint, error) {
	if days <= 0 {
		return nil, nil
	}
	now := db.now().In(db.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, db.loc)
	cutoff := today.AddDate(0, 0, -(days - 1)).Format(dayLayout)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT substr(date, 1, 10) AS day, AVG(score), COUNT(*)
		FROM mood_entries
		WHERE substr(date, 1, 10) >= ?
		GROUP BY day
		ORDER BY day ASC`, cutoff)
	if err != nil {
		return nil, &models.StorageError{Op: "mood trend", Err: err}
	}
	defer rows.Close()

	var result []models.TrendPoint
	for rows.Next() {
		var p models.TrendPoint
		var day string
		if err := rows.Scan(&day, &p.AvgScore, &p.Count); err != nil {
			return nil, &models.StorageError{Op: "mood trend", Err: err}
		}
		if p.Day, err = time.ParseInLocation(dayLayout, day, db.loc); err != nil {
			return nil, &models.StorageError{Op: "mood trend", Err: err}
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.StorageError{Op: "mood trend", Err: err}
	}
	return result, nil
}

// GetMoodByWeekday averages scores per day of week over all history.
// Weekday 0 is Monday; weekdays without entries are omitted.
func (db *DB) GetMoodByWeekday(ctx context.Context) ([]models.WeekdayPoint, error) {
	// strftime('%w') counts from Sunday; shift so Monday is 0.
	rows, err := db.conn.QueryContext(ctx, `
		SELECT (CAST(strftime('%w', date) AS INTEGER) + 6) % 7 AS weekday, AVG(score), COUNT(*)
		FROM mood_entries
		GROUP BY weekday
		ORDER BY weekday ASC`)
	if err != nil {
		return nil, &models.StorageError{Op: "mood by weekday", Err: err}
	}
	defer rows.Close()

	var result []models.WeekdayPoint
	for rows.Next() {
		var p models.WeekdayPoint
		if err := rows.Scan(&p.Weekday, &p.AvgScore, &p.Count); err != nil {
			return nil, &models.StorageError{Op: "mood by weekday", Err: err}
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.StorageError{Op: "mood by weekday", Err: err}
	}
	return result, nil
}

func encodeAnswers(answers []int) string {
	parts := make([]string, len(answers))
	for i, a := range answers {
		parts[i] = strconv.Itoa(a)
	}
	return strings.Join(parts, ",")
}

func decodeAnswers(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	answers := make([]int, len(parts))
	for i, p := range parts {
		a, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("decode answers %q: %w", s, err)
		}
		answers[i] = a
	}
	return answers, nil
}
