package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// utf8BOM keeps spreadsheet tools from misreading non-ASCII section text
// (degree signs, chemical formulas) as Latin-1.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func WriteCSV(w io.Writer, table Table) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(table.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range table.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
