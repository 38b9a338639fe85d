// EnhanceHistory.go
package SpectralEnhance

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// EnhanceRecord 一次增强任务的历史记录
type EnhanceRecord struct {
	TaskID         string
	InputPath      string
	OutputPath     string
	Method         string
	CutPercent     float64
	Gamma          float64
	BandCount      int
	ProcessedBands int
	SkippedBands   string // 逗号分隔的波段序号
	Cancelled      bool
	ElapsedMS      int64
	CreatedAt      time.Time
}

// NewEnhanceRecord 由任务参数和结果构建历史记录
func NewEnhanceRecord(params EnhanceTaskParams, result *EnhanceResult) EnhanceRecord {
	skipped := make([]string, 0, len(result.SkippedBands))
	for _, b := range result.SkippedBands {
		skipped = append(skipped, strconv.Itoa(b))
	}
	return EnhanceRecord{
		TaskID:         result.TaskID,
		InputPath:      result.InputPath,
		OutputPath:     result.OutputPath,
		Method:         result.Method.String(),
		CutPercent:     params.CutPercent,
		Gamma:          params.Gamma,
		BandCount:      result.BandCount,
		ProcessedBands: result.ProcessedBands,
		SkippedBands:   strings.Join(skipped, ","),
		Cancelled:      result.Cancelled,
		ElapsedMS:      result.Elapsed.Milliseconds(),
		CreatedAt:      time.Now(),
	}
}

// CreateEnhanceHistoryDB 创建（或打开）本地历史记录数据库
func CreateEnhanceHistoryDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS enhance_history (
		task_id TEXT PRIMARY KEY,
		input_path TEXT NOT NULL,
		output_path TEXT NOT NULL,
		method TEXT NOT NULL,
		cut_percent REAL,
		gamma REAL,
		band_count INTEGER,
		processed_bands INTEGER,
		skipped_bands TEXT,
		cancelled INTEGER,
		elapsed_ms INTEGER,
		created_at TIMESTAMP
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// InsertEnhanceRecord 写入历史记录
func InsertEnhanceRecord(db *sql.DB, rec *EnhanceRecord) error {
	_, err := db.Exec(`INSERT INTO enhance_history
		(task_id, input_path, output_path, method, cut_percent, gamma,
		 band_count, processed_bands, skipped_bands, cancelled, elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.TaskID, rec.InputPath, rec.OutputPath, rec.Method,
		rec.CutPercent, rec.Gamma,
		rec.BandCount, rec.ProcessedBands, rec.SkippedBands,
		rec.Cancelled, rec.ElapsedMS, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// ListEnhanceRecords 按时间倒序读取历史记录
// limit<=0表示不限制条数
func ListEnhanceRecords(db *sql.DB, limit int) ([]EnhanceRecord, error) {
	query := `SELECT task_id, input_path, output_path, method, cut_percent, gamma,
		band_count, processed_bands, skipped_bands, cancelled, elapsed_ms, created_at
		FROM enhance_history ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []EnhanceRecord
	for rows.Next() {
		var rec EnhanceRecord
		if err := rows.Scan(&rec.TaskID, &rec.InputPath, &rec.OutputPath, &rec.Method,
			&rec.CutPercent, &rec.Gamma,
			&rec.BandCount, &rec.ProcessedBands, &rec.SkippedBands,
			&rec.Cancelled, &rec.ElapsedMS, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveEnhanceRecordToPG 将历史记录写入调用方提供的PostgreSQL连接
// 连接的生命周期由调用方管理
func SaveEnhanceRecordToPG(DB *gorm.DB, schema string, rec *EnhanceRecord) error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}
	if schema == "" {
		schema = "public"
	}
	tableName := fmt.Sprintf(`"%s"."enhance_history"`, schema)

	createSQL := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		task_id VARCHAR(36) PRIMARY KEY,
		input_path TEXT NOT NULL,
		output_path TEXT NOT NULL,
		method VARCHAR(60) NOT NULL,
		cut_percent DOUBLE PRECISION,
		gamma DOUBLE PRECISION,
		band_count INTEGER,
		processed_bands INTEGER,
		skipped_bands TEXT,
		cancelled BOOLEAN,
		elapsed_ms BIGINT,
		created_at TIMESTAMP
	)`, tableName)
	if err := DB.Exec(createSQL).Error; err != nil {
		return fmt.Errorf("创建历史记录表失败: %v", err)
	}

	insertSQL := fmt.Sprintf(`INSERT INTO %s
		(task_id, input_path, output_path, method, cut_percent, gamma,
		 band_count, processed_bands, skipped_bands, cancelled, elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, tableName)
	if err := DB.Exec(insertSQL,
		rec.TaskID, rec.InputPath, rec.OutputPath, rec.Method,
		rec.CutPercent, rec.Gamma,
		rec.BandCount, rec.ProcessedBands, rec.SkippedBands,
		rec.Cancelled, rec.ElapsedMS, rec.CreatedAt).Error; err != nil {
		return fmt.Errorf("写入历史记录失败: %v", err)
	}

	return nil
}
