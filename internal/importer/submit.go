package importer

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/lead-cli/internal/model"
)

// DefaultChunkSize is the number of leads inserted per store request.
const DefaultChunkSize = 50

// LeadWriter is the store operation the submitter depends on.
type LeadWriter interface {
	InsertLeads(ctx context.Context, leads []model.LeadRecord) (int, error)
}

// Report is the outcome of a submission. Inserted counts rows actually
// committed, so on a mid-batch failure it reflects the chunks that
// succeeded before the failing one.
type Report struct {
	Total       int `json:"total"`
	Inserted    int `json:"inserted"`
	Skipped     int `json:"skipped"`
	FailedChunk int `json:"failed_chunk"` // -1 when all chunks succeeded
}

// Submitter persists valid parsed rows in fixed-size sequential chunks.
// Chunks are never issued concurrently: sequencing bounds backend load and
// lets the submitter halt at the first failure. There is no rollback
// across chunks; a partial import is a possible observable outcome.
type Submitter struct {
	writer    LeadWriter
	chunkSize int
	limiter   *rate.Limiter // optional
}

// NewSubmitter creates a Submitter. chunkSize <= 0 uses DefaultChunkSize;
// limiter may be nil to submit without rate limiting.
func NewSubmitter(w LeadWriter, chunkSize int, limiter *rate.Limiter) *Submitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Submitter{writer: w, chunkSize: chunkSize, limiter: limiter}
}

// Submit inserts the session's valid rows, returning the report in both
// the success and failure paths. Rows with a validation error are counted
// as skipped and never reach the store.
func (s *Submitter) Submit(ctx context.Context, rows []ParsedRow, defaultOwnerID string) (Report, error) {
	var payload []model.LeadRecord
	for _, r := range rows {
		if r.Valid() {
			payload = append(payload, r.Record(defaultOwnerID))
		}
	}

	report := Report{
		Total:       len(rows),
		Skipped:     len(rows) - len(payload),
		FailedChunk: -1,
	}

	for chunk := 0; chunk*s.chunkSize < len(payload); chunk++ {
		start := chunk * s.chunkSize
		end := min(start+s.chunkSize, len(payload))

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				report.FailedChunk = chunk
				return report, eris.Wrap(err, "importer: rate limit wait")
			}
		}

		n, err := s.writer.InsertLeads(ctx, payload[start:end])
		if err != nil {
			report.FailedChunk = chunk
			return report, eris.Wrapf(err, "importer: insert chunk %d", chunk)
		}
		report.Inserted += n

		zap.L().Debug("chunk inserted",
			zap.Int("chunk", chunk),
			zap.Int("rows", n),
		)
	}

	return report, nil
}
