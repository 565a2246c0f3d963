package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/byliew07/CheckMeIN/internal/export"
	"github.com/byliew07/CheckMeIN/internal/model"
	pkgerrors "github.com/byliew07/CheckMeIN/pkg/errors"
)

// DailyRate 某一天的出勤率
type DailyRate struct {
	Date    string  `json:"date"`
	Rate    float64 `json:"rate"` // 0–100
	Present int     `json:"present"`
	Total   int     `json:"total"`

	day time.Time
}

// StudentHistoryHeaders 学生历史导出的固定列
var StudentHistoryHeaders = []string{"date", "class_name", "student_username", "status", "time_in"}

// ════════════════════════════════════════════════════════════
// 出勤率序列
// ════════════════════════════════════════════════════════════
//
// 窗口为 [今天-(days-1), 今天] 的连续日期；
// 出勤率 = Present 数 / 当天记录数 × 100，当天无记录时为 0；
// 窗口内每天都没有记录时返回 nil。

func (s *attendanceService) GetAttendanceHistoryForClass(className string, days int) []DailyRate {
	if days <= 0 {
		days = DefaultTrendDays
	}
	return s.dailyRates(s.current().records, className, days)
}

func (s *attendanceService) dailyRates(records []model.AttendanceRecord, className string, days int) []DailyRate {
	if len(records) == 0 {
		return nil
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	start := today.AddDate(0, 0, -(days - 1))

	rates := make([]DailyRate, days)
	index := make(map[string]int, days)
	for i := range rates {
		d := start.AddDate(0, 0, i)
		rates[i] = DailyRate{Date: d.Format(model.DateLayout), day: d}
		index[rates[i].Date] = i
	}

	seen := false
	for _, r := range records {
		if r.ClassName != className {
			continue
		}
		d, ok := r.ParsedDate()
		if !ok {
			continue
		}
		i, in := index[d.Format(model.DateLayout)]
		if !in {
			continue
		}
		rates[i].Total++
		if r.Status == model.StatusPresent {
			rates[i].Present++
		}
		seen = true
	}
	if !seen {
		return nil
	}

	for i := range rates {
		if rates[i].Total > 0 {
			rates[i].Rate = float64(rates[i].Present) / float64(rates[i].Total) * 100
		}
	}
	return rates
}

// ════════════════════════════════════════════════════════════
// 导出
// ════════════════════════════════════════════════════════════

// ExportClassStatsToExcel 导出班级按日期的状态计数
// 每个可解析日期一行（升序），列为 date + 该班出现过的全部状态（排序）
func (s *attendanceService) ExportClassStatsToExcel(ctx context.Context, className string) (*export.Result, error) {
	records := s.current().records

	statusSet := make(map[model.Status]bool)
	counts := make(map[string]map[model.Status]int)
	dates := make(map[string]time.Time)
	for _, r := range records {
		if r.ClassName != className {
			continue
		}
		st := r.EffectiveStatus()
		statusSet[st] = true

		d, ok := r.ParsedDate()
		if !ok {
			continue
		}
		key := d.Format(model.DateLayout)
		dates[key] = d
		if counts[key] == nil {
			counts[key] = make(map[model.Status]int)
		}
		counts[key][st]++
	}
	if len(dates) == 0 {
		return nil, bizErr(pkgerrors.ErrNoData, MsgNoClassRecords)
	}

	statuses := make([]string, 0, len(statusSet))
	for st := range statusSet {
		statuses = append(statuses, string(st))
	}
	sort.Strings(statuses)

	keys := make([]string, 0, len(dates))
	for k := range dates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := append([]string{export.DateColumn}, statuses...)
	rows := make([][]any, 0, len(keys))
	for _, k := range keys {
		row := make([]any, 0, len(headers))
		row = append(row, dates[k])
		for _, st := range statuses {
			row = append(row, counts[k][model.Status(st)])
		}
		rows = append(rows, row)
	}

	res, err := s.exporter.WriteTable(className+"_attendance", className, headers, rows)
	if err != nil {
		s.logger.Error("导出班级统计失败", zap.String("class_name", className), zap.Error(err))
		return nil, err
	}
	s.logger.Info("导出班级统计",
		zap.String("class_name", className),
		zap.String("path", res.Path),
		zap.String("format", string(res.Format)),
	)
	return res, nil
}

// ExportStudentHistoryToExcel 导出学生的全部签到记录，顺序同 GetStudentHistory
func (s *attendanceService) ExportStudentHistoryToExcel(ctx context.Context, username string) (*export.Result, error) {
	hist := s.GetStudentHistory(username)
	if len(hist) == 0 {
		return nil, bizErr(pkgerrors.ErrNoData, MsgNoStudentRecords)
	}

	rows := make([][]any, 0, len(hist))
	for _, r := range hist {
		rows = append(rows, []any{r.Date, r.ClassName, r.StudentUsername, string(r.Status), r.TimeIn})
	}

	sheet := username
	if sheet == "" {
		sheet = "History"
	}
	res, err := s.exporter.WriteTable(username+"_history", sheet, StudentHistoryHeaders, rows)
	if err != nil {
		s.logger.Error("导出学生历史失败", zap.String("student", username), zap.Error(err))
		return nil, err
	}
	s.logger.Info("导出学生历史",
		zap.String("student", username),
		zap.String("path", res.Path),
		zap.String("format", string(res.Format)),
	)
	return res, nil
}

// ════════════════════════════════════════════════════════════
// 趋势图
// ════════════════════════════════════════════════════════════

// PlotAttendanceTrend 重新计算出勤率序列并覆盖写入固定路径的 PNG
func (s *attendanceService) PlotAttendanceTrend(ctx context.Context, className string) (string, error) {
	records := s.current().records
	if len(records) == 0 {
		return "", bizErr(pkgerrors.ErrNoData, MsgNoRecords)
	}

	days := s.opts.TrendDays
	rates := s.dailyRates(records, className, days)
	if len(rates) == 0 {
		return "", bizErr(pkgerrors.ErrNoData, MsgNoRecentData)
	}

	points := make([]export.Point, len(rates))
	for i, r := range rates {
		points[i] = export.Point{Date: r.day, Rate: r.Rate}
	}

	title := fmt.Sprintf("%d-day Attendance Rate - %s", days, className)
	if err := export.RenderTrend(s.opts.ChartPath, title, points); err != nil {
		s.logger.Error("绘制趋势图失败", zap.String("class_name", className), zap.Error(err))
		return "", err
	}

	s.logger.Info("绘制趋势图", zap.String("class_name", className), zap.String("path", s.opts.ChartPath))
	return s.opts.ChartPath, nil
}
