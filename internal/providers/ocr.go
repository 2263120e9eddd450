package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ledongthuc/pdf"

	"clinicrag/internal/config"
	"clinicrag/internal/coreerr"
)

// PdfExtractor extracts plain text from PDF documents up to a page cap.
type PdfExtractor struct{}

func NewPdfExtractor() *PdfExtractor { return &PdfExtractor{} }

func (p *PdfExtractor) ExtractPdf(_ context.Context, data []byte, maxPages int) (PdfResult, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return PdfResult{}, coreerr.Wrap(coreerr.InvalidMedia, "not a valid pdf", err)
	}
	total := r.NumPage()
	capped := total
	if maxPages > 0 && capped > maxPages {
		capped = maxPages
	}
	var buf bytes.Buffer
	for i := 1; i <= capped; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
		buf.WriteByte('\n')
	}
	return PdfResult{Text: buf.String(), PageCount: capped}, nil
}

// HTTPImageOCR calls an HTTP OCR service for image documents. No OCR client
// library appears in the retrieval pack, so the adapter speaks a bespoke
// REST contract the way every ASR/OCR adapter in the pack does.
type HTTPImageOCR struct {
	cfg    config.ProviderConfig
	client *http.Client
}

func NewHTTPImageOCR(cfg config.ProviderConfig, client *http.Client) *HTTPImageOCR {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPImageOCR{cfg: cfg, client: client}
}

func (p *PdfExtractor) ExtractImage(context.Context, []byte, string) (ImageResult, error) {
	return ImageResult{}, coreerr.New(coreerr.Internal, "PdfExtractor does not support image OCR")
}

type ocrImageRequest struct {
	Lang  string `json:"lang"`
	Image []byte `json:"image"`
}

type ocrImageResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

func (o *HTTPImageOCR) ExtractImage(ctx context.Context, data []byte, lang string) (ImageResult, error) {
	timeout := time.Duration(o.cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, _ := json.Marshal(ocrImageRequest{Lang: lang, Image: data})
	req, err := http.NewRequestWithContext(cctx, http.MethodPost, o.cfg.BaseURL+o.cfg.Path, bytes.NewReader(body))
	if err != nil {
		return ImageResult{}, coreerr.Wrap(coreerr.Internal, "build ocr request", err)
	}
	applyAuth(req, o.cfg)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		if cctx.Err() != nil {
			return ImageResult{}, coreerr.Wrap(coreerr.Timeout, "ocr request timed out", err)
		}
		return ImageResult{}, coreerr.Wrap(coreerr.ProviderUnavailable, "ocr request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(resp.Body)
		return ImageResult{}, coreerr.Wrap(coreerr.ProviderUnavailable, fmt.Sprintf("ocr error: %s: %s", resp.Status, string(b)), nil)
	}
	var out ocrImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ImageResult{}, coreerr.Wrap(coreerr.Internal, "parse ocr response", err)
	}
	return ImageResult{Text: out.Text, Confidence: out.Confidence}, nil
}

func (o *HTTPImageOCR) ExtractPdf(context.Context, []byte, int) (PdfResult, error) {
	return PdfResult{}, coreerr.New(coreerr.Internal, "HTTPImageOCR does not support pdf extraction")
}

// CombinedOCR routes PDFs to PdfExtractor and images to an HTTP OCR service,
// implementing the single OCR capability C1 expects.
type CombinedOCR struct {
	pdf   *PdfExtractor
	image *HTTPImageOCR
}

func NewCombinedOCR(pdf *PdfExtractor, image *HTTPImageOCR) *CombinedOCR {
	return &CombinedOCR{pdf: pdf, image: image}
}

func (c *CombinedOCR) ExtractPdf(ctx context.Context, data []byte, maxPages int) (PdfResult, error) {
	return c.pdf.ExtractPdf(ctx, data, maxPages)
}

func (c *CombinedOCR) ExtractImage(ctx context.Context, data []byte, lang string) (ImageResult, error) {
	return c.image.ExtractImage(ctx, data, lang)
}
