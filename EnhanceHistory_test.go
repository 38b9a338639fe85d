package SpectralEnhance

import (
	"path/filepath"
	"testing"
	"time"
)

func TestEnhanceHistoryRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	db, err := CreateEnhanceHistoryDB(dbPath)
	if err != nil {
		t.Fatalf("failed to create history db: %v", err)
	}
	defer db.Close()

	first := EnhanceRecord{
		TaskID:         "11111111-1111-1111-1111-111111111111",
		InputPath:      "/data/a.tif",
		OutputPath:     "/data/a_out.tif",
		Method:         MethodLinearStretch.String(),
		CutPercent:     2,
		Gamma:          1,
		BandCount:      3,
		ProcessedBands: 3,
		CreatedAt:      time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	second := EnhanceRecord{
		TaskID:         "22222222-2222-2222-2222-222222222222",
		InputPath:      "/data/b.tif",
		OutputPath:     "/data/b_out.tif",
		Method:         MethodGammaCorrection.String(),
		CutPercent:     2,
		Gamma:          1.8,
		BandCount:      4,
		ProcessedBands: 3,
		SkippedBands:   "2",
		Cancelled:      true,
		ElapsedMS:      1500,
		CreatedAt:      time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
	}

	if err := InsertEnhanceRecord(db, &first); err != nil {
		t.Fatalf("insert first record: %v", err)
	}
	if err := InsertEnhanceRecord(db, &second); err != nil {
		t.Fatalf("insert second record: %v", err)
	}

	records, err := ListEnhanceRecords(db, 0)
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("record count: got %d, want 2", len(records))
	}
	// 按时间倒序，最新的在前
	if records[0].TaskID != second.TaskID {
		t.Errorf("order: got %s first, want %s", records[0].TaskID, second.TaskID)
	}
	if records[0].Method != "Gamma Correction" || !records[0].Cancelled || records[0].SkippedBands != "2" {
		t.Errorf("unexpected record content: %+v", records[0])
	}

	limited, err := ListEnhanceRecords(db, 1)
	if err != nil {
		t.Fatalf("list limited records: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limited count: got %d, want 1", len(limited))
	}
}

func TestNewEnhanceRecord(t *testing.T) {
	params := EnhanceTaskParams{
		InputPath:  "/data/in.tif",
		OutputPath: "/data/out.tif",
		EnhanceParams: EnhanceParams{
			Method:     MethodEqualization,
			CutPercent: 5,
			Gamma:      1,
		},
	}
	result := &EnhanceResult{
		TaskID:         "33333333-3333-3333-3333-333333333333",
		InputPath:      params.InputPath,
		OutputPath:     params.OutputPath,
		Method:         params.Method,
		BandCount:      4,
		ProcessedBands: 2,
		SkippedBands:   []int{2, 4},
		Elapsed:        2 * time.Second,
	}

	rec := NewEnhanceRecord(params, result)
	if rec.Method != "Equalization" {
		t.Errorf("method: got %s", rec.Method)
	}
	if rec.SkippedBands != "2,4" {
		t.Errorf("skipped bands: got %s, want 2,4", rec.SkippedBands)
	}
	if rec.ElapsedMS != 2000 {
		t.Errorf("elapsed: got %d, want 2000", rec.ElapsedMS)
	}
	if rec.CreatedAt.IsZero() {
		t.Errorf("created_at not set")
	}
}
