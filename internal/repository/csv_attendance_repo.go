package repository

import (
	"context"

	"github.com/byliew07/CheckMeIN/internal/model"
	"github.com/byliew07/CheckMeIN/pkg/csvtable"
)

// csvAttendanceRepo AttendanceRepository 的 CSV 实现
type csvAttendanceRepo struct {
	table *csvtable.Table
}

// NewCSVAttendanceRepo 创建 AttendanceRepository 实例
func NewCSVAttendanceRepo(path string) AttendanceRepository {
	return &csvAttendanceRepo{table: csvtable.New(path, attendanceHeader)}
}

func (r *csvAttendanceRepo) List(_ context.Context) ([]model.AttendanceRecord, error) {
	header, rows, err := r.table.Load()
	if err != nil {
		return nil, err
	}
	if err := requireColumns(r.table.Path(), header, "date", "class_name", "student_username"); err != nil {
		return nil, err
	}
	records := make([]model.AttendanceRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := decodeRecord(r.table.Path(), i, row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *csvAttendanceRepo) Create(_ context.Context, record *model.AttendanceRecord) error {
	return r.table.Append(encodeRecord(record))
}

func (r *csvAttendanceRepo) UpdateStatus(_ context.Context, key model.RecordKey, status model.Status) (bool, error) {
	return r.table.UpdateWhere(
		func(row csvtable.Row) bool {
			return row["date"] == key.Date &&
				row["class_name"] == key.ClassName &&
				row["student_username"] == key.StudentUsername
		},
		func(row csvtable.Row) { row["status"] = string(status) },
	)
}
