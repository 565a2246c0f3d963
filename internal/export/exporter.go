// Package export 将聚合后的报表行写成带格式的 .xlsx 文件（失败时退回 CSV），
// 并把出勤率序列渲染为折线图。
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/byliew07/CheckMeIN/internal/model"
	pkgerrors "github.com/byliew07/CheckMeIN/pkg/errors"
)

// Format 实际写出的文件格式
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DateColumn 该列中的 time.Time 值使用日期样式
const DateColumn = "date"

const (
	timestampLayout = "20060102_150405"
	maxSheetName    = 31
	colPadding      = 2
)

// Result 一次导出的结果
// Fallback 非空表示 xlsx 写入失败、已改写 CSV；调用方无需把它当作错误
type Result struct {
	Path     string
	Format   Format
	Fallback error
}

// Exporter 报表导出器
type Exporter struct {
	dir    string
	now    func() time.Time
	save   func(f *excelize.File, path string) error
	logger *zap.Logger

	mu sync.Mutex // 串行化文件名分配与写入
}

// NewExporter 创建导出器，dir 为输出目录（写入时按需创建）
func NewExporter(dir string, logger *zap.Logger) *Exporter {
	return &Exporter{
		dir:    dir,
		now:    time.Now,
		save:   func(f *excelize.File, path string) error { return f.SaveAs(path) },
		logger: logger,
	}
}

// Dir 返回输出目录
func (e *Exporter) Dir() string { return e.dir }

// WriteTable 写出一张表：文件名为 {subject}_{YYYYMMDD_HHMMSS}.xlsx，
// 同一秒内重名时追加 _2、_3…；xlsx 失败时在同一基名下写 .csv
func (e *Exporter) WriteTable(subject, sheet string, headers []string, rows [][]any) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: 创建导出目录 %s 失败: %w", pkgerrors.ErrStorageUnavailable, e.dir, err)
	}

	base, err := e.uniqueBase(subject)
	if err != nil {
		return nil, err
	}

	xlsxPath := base + ".xlsx"
	xerr := e.writeXLSX(xlsxPath, sheet, headers, rows)
	if xerr == nil {
		e.logger.Info("报表已导出", zap.String("path", xlsxPath))
		return &Result{Path: xlsxPath, Format: FormatXLSX}, nil
	}
	os.Remove(xlsxPath)

	e.logger.Warn("xlsx 写入失败，改写 CSV", zap.String("path", xlsxPath), zap.Error(xerr))

	csvPath := base + ".csv"
	if err := writeCSV(csvPath, headers, rows); err != nil {
		return nil, fmt.Errorf("%w: 导出失败: %w", pkgerrors.ErrStorageUnavailable, errors.Join(xerr, err))
	}
	e.logger.Info("报表已导出", zap.String("path", csvPath))
	return &Result{Path: csvPath, Format: FormatCSV, Fallback: xerr}, nil
}

// ── 文件名 ──

func (e *Exporter) uniqueBase(subject string) (string, error) {
	stem := filepath.Join(e.dir, SanitizeFileName(subject)+"_"+e.now().Format(timestampLayout))
	for n := 1; ; n++ {
		base := stem
		if n > 1 {
			base = fmt.Sprintf("%s_%d", stem, n)
		}
		taken, err := anyExists(base+".xlsx", base+".csv")
		if err != nil {
			return "", err
		}
		if !taken {
			return base, nil
		}
	}
}

func anyExists(paths ...string) (bool, error) {
	for _, p := range paths {
		_, err := os.Stat(p)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("%w: 检查 %s 失败: %w", pkgerrors.ErrStorageUnavailable, p, err)
		}
	}
	return false, nil
}

// SanitizeFileName 将路径分隔符等不能出现在文件名中的字符替换为下划线
func SanitizeFileName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, s)
	if s == "" {
		return "export"
	}
	return s
}

// SanitizeSheetName 去掉工作表名中的非法字符并截断到 31 个字符
func SanitizeSheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, s)
	s = strings.Trim(s, "'")
	if utf8.RuneCountInString(s) > maxSheetName {
		s = string([]rune(s)[:maxSheetName])
	}
	if s == "" {
		return "Sheet1"
	}
	return s
}

// ── xlsx ──

func (e *Exporter) writeXLSX(path, sheet string, headers []string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	name := SanitizeSheetName(sheet)
	if name != "Sheet1" {
		if err := f.SetSheetName("Sheet1", name); err != nil {
			return err
		}
	}

	align := &excelize.Alignment{Horizontal: "left", Vertical: "center"}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: align,
	})
	if err != nil {
		return err
	}
	cellStyle, err := f.NewStyle(&excelize.Style{Alignment: align})
	if err != nil {
		return err
	}
	dateFmt := "yyyy-mm-dd"
	dateStyle, err := f.NewStyle(&excelize.Style{Alignment: align, CustomNumFmt: &dateFmt})
	if err != nil {
		return err
	}

	widths := make([]int, len(headers))

	// 表头
	for i, h := range headers {
		addr, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(name, addr, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(name, addr, addr, headerStyle); err != nil {
			return err
		}
		widths[i] = utf8.RuneCountInString(h)
	}

	// 数据行
	for r, row := range rows {
		for c, v := range row {
			addr, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(name, addr, v); err != nil {
				return err
			}
			style := cellStyle
			if _, isTime := v.(time.Time); isTime && c < len(headers) && strings.EqualFold(headers[c], DateColumn) {
				style = dateStyle
			}
			if err := f.SetCellStyle(name, addr, addr, style); err != nil {
				return err
			}
			if c < len(widths) {
				widths[c] = max(widths[c], utf8.RuneCountInString(display(v)))
			}
		}
	}

	// 列宽 = 最长值 + 2
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(name, col, col, float64(w+colPadding)); err != nil {
			return err
		}
	}

	return e.save(f, path)
}

// ── CSV 回退 ──

func writeCSV(path string, headers []string, rows [][]any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	werr := w.Write(headers)
	for _, row := range rows {
		if werr != nil {
			break
		}
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = display(v)
		}
		werr = w.Write(rec)
	}
	if werr == nil {
		w.Flush()
		werr = w.Error()
	}
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(path)
	}
	return werr
}

// display 单元格的文本形式；日期按 YYYY-MM-DD
func display(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format(model.DateLayout)
	default:
		return fmt.Sprint(x)
	}
}
