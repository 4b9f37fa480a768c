package commands

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/goccy/go-yaml"

	"github.com/RyanBlaney/sonido-pyin/algorithms/tonal"
)

var errUnknownFormat = errors.New("unknown output format")

// checkFormat rejects an output format before any work is done
func checkFormat(format string) error {
	switch format {
	case "tsv", "", "json", "yaml", "yml":
		return nil
	}
	return fmt.Errorf("%w %q (want tsv, json or yaml)", errUnknownFormat, format)
}

// frameRow is one output line. F0 is nil for unvoiced frames so that JSON
// and YAML carry null instead of an unencodable NaN.
type frameRow struct {
	Time       float64  `json:"time" yaml:"time"`
	F0         *float64 `json:"f0" yaml:"f0"`
	Voiced     bool     `json:"voiced" yaml:"voiced"`
	VoicedProb float64  `json:"voiced_prob" yaml:"voiced_prob"`
}

func trackRows(res *tonal.Result) []frameRow {
	rows := make([]frameRow, res.Len())
	for i := range rows {
		rows[i] = frameRow{
			Time:       res.Times[i],
			Voiced:     res.VoicedFlag[i],
			VoicedProb: res.VoicedProb[i],
		}
		if f0 := res.F0[i]; !math.IsNaN(f0) && !math.IsInf(f0, 0) {
			rows[i].F0 = &f0
		}
	}
	return rows
}

func writeTrack(w io.Writer, format string, res *tonal.Result) error {
	rows := trackRows(res)

	switch format {
	case "tsv", "":
		return writeTSV(w, rows)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml", "yml":
		data, err := yaml.Marshal(rows)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return checkFormat(format)
	}
}

func writeTSV(w io.Writer, rows []frameRow) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "time\tf0\tvoiced\tvoiced_prob")
	for _, r := range rows {
		f0 := "nan"
		if r.F0 != nil {
			f0 = strconv.FormatFloat(*r.F0, 'f', 3, 64)
		}
		fmt.Fprintf(bw, "%.4f\t%s\t%t\t%.4f\n", r.Time, f0, r.Voiced, r.VoicedProb)
	}
	return bw.Flush()
}
