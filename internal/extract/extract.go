// Package extract pulls the text layer out of uploaded PDFs and decides
// whether a document is a scan that needs OCR elsewhere.
package extract

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// scanTextThreshold is the minimum number of extracted characters for a PDF
// to count as text-bearing. A text PDF with 49 characters of incidental text
// is indistinguishable from a scan under this rule; that is a documented
// limitation of the heuristic.
const scanTextThreshold = 50

// Text extracts the text layer of a PDF using github.com/ledongthuc/pdf.
func Text(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// DetectScanned reports whether the PDF appears to be a scanned image.
// A parse failure counts as scanned: flagging for manual OCR beats
// fabricating fields from a failed parse.
func DetectScanned(ctx context.Context, data []byte) bool {
	text, err := Text(ctx, data)
	if err != nil {
		return true
	}
	return IsLikelyScanned(text)
}

// IsLikelyScanned classifies extracted text by the fixed length threshold.
func IsLikelyScanned(text string) bool {
	return len(strings.TrimSpace(text)) < scanTextThreshold
}
