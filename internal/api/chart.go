package api

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/dualcam/syncview/internal/httputil"
	"github.com/dualcam/syncview/internal/session"
	"github.com/dualcam/syncview/internal/trajectory"
)

// showTrajectoryChart renders a quick scatter plot (HTML) of both cameras'
// observed box centers using go-echarts. This is a debugging-only endpoint to
// eyeball tracker output against the reconstruction without the viewer UI.
// Query params:
//   - max_points (optional; default 4000 per camera) to reduce payload size
func (s *Server) showTrajectoryChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	ls, ok := s.lookup(r.PathValue("id"))
	if !ok {
		httputil.NotFound(w, "unknown session")
		return
	}

	maxPoints := 4000
	if mp := r.URL.Query().Get("max_points"); mp != "" {
		if v, err := strconv.Atoi(mp); err == nil && v > 100 && v <= 50000 {
			maxPoints = v
		}
	}

	trajA := ls.session.Trajectory(session.LabelA)
	trajB := ls.session.Trajectory(session.LabelB)
	if len(trajA) == 0 && len(trajB) == 0 {
		httputil.NotFound(w, "no trajectory points in session")
		return
	}

	dataA, maxAbsA, maxTimeA := scatterSeries(trajA, maxPoints)
	dataB, maxAbsB, maxTimeB := scatterSeries(trajB, maxPoints)
	maxAbs := math.Max(1.0, math.Max(maxAbsA, maxAbsB))
	maxTime := math.Max(maxTimeA, maxTimeB)
	if maxTime == 0 {
		maxTime = 1
	}

	// Add a small padding so points at the edges are visible
	pad := maxAbs * 1.05

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Trajectory Scatter", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Observed Box Centers",
			Subtitle: fmt.Sprintf("session=%s a=%d b=%d", ls.session.ID, len(dataA), len(dataB)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (px)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (px)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxTime),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#31688e", "#35b779", "#fde725"}},
		}),
	)

	scatter.AddSeries("camera_a", dataA, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))
	scatter.AddSeries("camera_b", dataB, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// scatterSeries converts a trajectory into scatter points (box center x, y,
// clip time), downsampling by stride to stay within maxPoints.
func scatterSeries(traj trajectory.Trajectory, maxPoints int) (data []opts.ScatterData, maxAbs, maxTime float64) {
	if len(traj) == 0 {
		return nil, 0, 0
	}

	stride := 1
	if len(traj) > maxPoints {
		stride = int(math.Ceil(float64(len(traj)) / float64(maxPoints)))
	}

	data = make([]opts.ScatterData, 0, len(traj)/stride+1)
	for i := 0; i < len(traj); i += stride {
		p := traj[i]
		cx := p.X + p.W/2
		cy := p.Y + p.H/2
		if math.Abs(cx) > maxAbs {
			maxAbs = math.Abs(cx)
		}
		if math.Abs(cy) > maxAbs {
			maxAbs = math.Abs(cy)
		}
		if p.Time > maxTime {
			maxTime = p.Time
		}
		data = append(data, opts.ScatterData{Value: []interface{}{cx, cy, p.Time}})
	}
	return data, maxAbs, maxTime
}
