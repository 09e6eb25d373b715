// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/greenguard/docflow/pkg/types"
)

// WriteCSV writes rows to w with the same column layout as WriteXLSX.
// Blank cells stand in for unknown page numbers and non-heading levels.
func WriteCSV(w io.Writer, rows []types.Row, cfg types.ExportConfig) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers(cfg)); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	metaKeys := metadataKeys(cfg.Metadata)
	for _, r := range rows {
		record := make([]string, 0, len(metaKeys)+len(baseHeaders))
		for _, k := range metaKeys {
			record = append(record, cfg.Metadata[k])
		}
		for _, v := range cellValues(r) {
			record = append(record, csvCell(v))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(x)
	}
}
