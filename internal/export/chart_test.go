package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	pkgerrors "github.com/byliew07/CheckMeIN/pkg/errors"
)

func samplePoints(n int) []Point {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = Point{Date: start.AddDate(0, 0, i), Rate: float64(i * 100 / n)}
	}
	return pts
}

func TestRenderTrend_WritesPNGAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", "attendance_trend.png")

	if err := RenderTrend(path, "14-day Attendance Rate - Math", samplePoints(14)); err != nil {
		t.Fatalf("RenderTrend 失败: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取图片失败: %v", err)
	}
	if !bytes.HasPrefix(first, []byte("\x89PNG")) {
		t.Error("输出应为 PNG")
	}

	if err := RenderTrend(path, "14-day Attendance Rate - Art", samplePoints(14)); err != nil {
		t.Fatalf("再次渲染失败: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("固定路径应被覆盖，目录中实际有 %d 个文件", len(entries))
	}
}

func TestRenderTrend_NoPoints(t *testing.T) {
	err := RenderTrend(filepath.Join(t.TempDir(), "x.png"), "t", nil)
	if !errors.Is(err, pkgerrors.ErrNoData) {
		t.Errorf("期望 ErrNoData，实际: %v", err)
	}
}
