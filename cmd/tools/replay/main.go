// Command replay steps a stored clip pairing through the synchronized
// timeline at a fixed frame rate and emits the reconstructed boxes as CSV.
// Useful for diffing reconstruction behavior across changes without a
// browser in the loop.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dualcam/syncview/internal/config"
	"github.com/dualcam/syncview/internal/session"
	"github.com/dualcam/syncview/internal/trajectory"
)

var (
	pairingPath = flag.String("pairing", "", "Path to pairing JSON file (required)")
	configPath  = flag.String("config", "", "Path to JSON config file")
	fps         = flag.Float64("fps", 30, "Frames per second to step the timeline at")
	outPath     = flag.String("out", "", "Output CSV path (default stdout)")
)

// pairingFile mirrors the API's pairing-open payload so captured requests can
// be replayed directly.
type pairingFile struct {
	PairingID string             `json:"pairing_id"`
	CameraA   session.ClipRecord `json:"camera_a"`
	CameraB   session.ClipRecord `json:"camera_b"`
}

func boxColumns(b *trajectory.Box) []string {
	if b == nil {
		return []string{"", "", "", "", "", ""}
	}
	return []string{
		fmt.Sprintf("%.2f", b.X),
		fmt.Sprintf("%.2f", b.Y),
		fmt.Sprintf("%.2f", b.Width),
		fmt.Sprintf("%.2f", b.Height),
		fmt.Sprintf("%t", b.Projected),
		fmt.Sprintf("%.3f", b.ProjectionConfidence),
	}
}

func main() {
	flag.Parse()

	if *pairingPath == "" {
		log.Fatal("-pairing is required")
	}
	if *fps <= 0 {
		log.Fatal("-fps must be positive")
	}

	data, err := os.ReadFile(*pairingPath)
	if err != nil {
		log.Fatalf("failed to read pairing file: %v", err)
	}
	var pf pairingFile
	if err := json.Unmarshal(data, &pf); err != nil {
		log.Fatalf("failed to parse pairing file: %v", err)
	}

	cfg := config.Empty()
	if *configPath != "" {
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	sess, err := session.New(pf.PairingID, pf.CameraA, pf.CameraB, cfg, nil, nil)
	if err != nil {
		log.Fatalf("failed to open session: %v", err)
	}

	out := os.Stdout
	if *outPath != "" {
		if out, err = os.Create(*outPath); err != nil {
			log.Fatalf("failed to create output file: %v", err)
		}
		defer out.Close()
	}

	w := csv.NewWriter(out)
	header := []string{
		"real_time",
		"state_a", "local_a", "ax", "ay", "aw", "ah", "projected_a", "confidence_a",
		"state_b", "local_b", "bx", "by", "bw", "bh", "projected_b", "confidence_b",
	}
	if err := w.Write(header); err != nil {
		log.Fatalf("failed to write header: %v", err)
	}

	step := 1.0 / *fps
	total := sess.Sync().Total()
	for t := 0.0; t <= total; t += step {
		boxA, boxB, seekA, seekB := sess.BoxesAtReal(t)

		row := []string{fmt.Sprintf("%.3f", t)}
		row = append(row, string(seekA.State), fmt.Sprintf("%.3f", seekA.LocalTime))
		row = append(row, boxColumns(boxA)...)
		row = append(row, string(seekB.State), fmt.Sprintf("%.3f", seekB.LocalTime))
		row = append(row, boxColumns(boxB)...)
		if err := w.Write(row); err != nil {
			log.Fatalf("failed to write row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("failed to flush output: %v", err)
	}
}
