package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// HistoryPoint is one epoch's summary.
type HistoryPoint struct {
	Epoch      int
	TrainLoss  float32
	ValLoss    float32
	Validated  bool
	Throughput float64 // batches per second
}

// History collects per-epoch points for later plotting.
type History struct {
	points []HistoryPoint
}

func (h *History) Append(p HistoryPoint) {
	h.points = append(h.points, p)
}

// Points returns the recorded epochs in order.
func (h *History) Points() []HistoryPoint {
	return h.points
}

// WriteCSV writes a header plus one row per epoch. Epochs without a
// validation pass leave the val_loss cell empty.
func (h *History) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"epoch", "train_loss", "val_loss", "throughput"}); err != nil {
		return err
	}
	for _, p := range h.points {
		val := ""
		if p.Validated {
			val = fmt.Sprintf("%.6f", p.ValLoss)
		}
		row := []string{
			strconv.Itoa(p.Epoch),
			fmt.Sprintf("%.6f", p.TrainLoss),
			val,
			fmt.Sprintf("%.2f", p.Throughput),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the CSV to path, replacing any previous file.
func (h *History) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return h.WriteCSV(f)
}
