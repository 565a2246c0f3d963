package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	pkgerrors "github.com/byliew07/CheckMeIN/pkg/errors"
)

// Point 某一天的出勤率（0–100）
type Point struct {
	Date time.Time
	Rate float64
}

// RenderTrend 把出勤率序列渲染为 PNG 折线图并覆盖写入 path
// Y 轴固定为 0–100
func RenderTrend(path, title string, points []Point) error {
	if len(points) == 0 {
		return fmt.Errorf("%w: 没有可绘制的数据", pkgerrors.ErrNoData)
	}

	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Date
		ys[i] = p.Rate
	}

	graph := chart.Chart{
		Title:  title,
		Width:  800,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeDateValueFormatter,
			TickPosition:   chart.TickPositionBetweenTicks,
		},
		YAxis: chart.YAxis{
			Name:  "Attendance Rate (%)",
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
			GridMajorStyle: chart.Style{
				StrokeColor: drawing.ColorFromHex("dddddd"),
				StrokeWidth: 1,
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    title,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
					DotColor:    chart.ColorBlue,
					DotWidth:    3,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("渲染趋势图失败: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: 创建目录失败: %w", pkgerrors.ErrStorageUnavailable, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: 写入 %s 失败: %w", pkgerrors.ErrStorageUnavailable, path, err)
	}
	return nil
}
