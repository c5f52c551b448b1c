package export

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/kirillkom/lab-grader/internal/core/domain"
)

// WriteBundle packs one feedback document per submission into a zip
// archive, named after the original upload stems.
func WriteBundle(w io.Writer, results []domain.Result) error {
	zw := zip.NewWriter(w)
	for _, res := range results {
		f, err := zw.Create(FeedbackFilename(res.Filename))
		if err != nil {
			return fmt.Errorf("create bundle entry: %w", err)
		}
		if err := WriteResultDoc(f, res); err != nil {
			return fmt.Errorf("render %s: %w", res.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close bundle: %w", err)
	}
	return nil
}
