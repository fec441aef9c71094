// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package threadseries

import (
	"encoding/csv"
	"io"
	"strconv"
)

// ToCSV writes the derived series in ds to out as CSV, one row per
// dataset and thread count. Absent values are written as empty cells.
func ToCSV(out io.Writer, ds []*Derived) error {
	csvw := csv.NewWriter(out)
	csvw.Write([]string{"dataset", "threads", "mean_seconds", "trials", "speedup", "efficiency"})
	row := make([]string, 6)
	for _, d := range ds {
		s := d.Series
		for i, th := range s.Threads {
			clearRow(row)
			row[0] = s.Dataset
			row[1] = strconv.Itoa(th)
			if sum := s.Samples[i]; sum != nil {
				row[2] = strof(sum.Mean)
				row[3] = strconv.Itoa(sum.Trials)
			}
			if v := d.Speedup[i]; v.Present {
				row[4] = strof(v.V)
			}
			if v := d.Efficiency[i]; v.Present {
				row[5] = strof(v.V)
			}
			csvw.Write(row)
		}
	}
	csvw.Flush()
	return csvw.Error()
}

func clearRow(entries []string) {
	for i := range entries {
		entries[i] = ""
	}
}

func strof(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
