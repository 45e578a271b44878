// Package archive uploads completed season-plan summaries to object storage
// for long-term audit. Archival is best-effort: a failed upload is logged by
// the caller, never fails the workflow.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/trimline/seasonplan/internal/models"
)

// PlanSummary is the envelope archived for one completed workflow.
type PlanSummary struct {
	Workflow   models.WorkflowState     `json:"workflow"`
	Forecast   *models.ForecastResult   `json:"forecast,omitempty"`
	Allocation *models.AllocationPlan   `json:"allocation,omitempty"`
	Markdown   *models.MarkdownDecision `json:"markdown,omitempty"`
	ArchivedAt time.Time                `json:"archivedAt"`
}

// Archiver stores a completed plan summary somewhere durable.
type Archiver interface {
	ArchivePlan(ctx context.Context, summary PlanSummary) error
}

// S3Archiver writes plan summaries to S3 paths like:
//
//	s3://<bucket>/<prefix>/plans/YYYY/MM/DD/<workflowID>.json
type S3Archiver struct {
	bucket   string
	prefix   string
	uploader *manager.Uploader
}

// NewS3Archiver creates an S3Archiver. Region and credentials come from the
// environment (AWS_REGION, AWS_PROFILE, AWS_ACCESS_KEY_ID/SECRET etc.).
func NewS3Archiver(ctx context.Context, bucket, prefix string) (*S3Archiver, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket required")
	}
	cfg, err := awsConfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &S3Archiver{
		bucket:   bucket,
		prefix:   prefix,
		uploader: manager.NewUploader(client),
	}, nil
}

// ArchivePlan uploads the summary JSON keyed by completion date and workflow id.
func (a *S3Archiver) ArchivePlan(ctx context.Context, summary PlanSummary) error {
	if summary.Workflow.ID == uuid.Nil {
		return fmt.Errorf("workflow id required")
	}
	if summary.ArchivedAt.IsZero() {
		summary.ArchivedAt = time.Now().UTC()
	}
	body, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal plan summary: %w", err)
	}

	ts := summary.ArchivedAt
	year, month, day := ts.Date()
	key := path.Join(a.prefix, "plans",
		fmt.Sprintf("%04d", year),
		fmt.Sprintf("%02d", int(month)),
		fmt.Sprintf("%02d", day),
		fmt.Sprintf("%s.json", summary.Workflow.ID),
	)

	_, err = a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("upload plan summary: %w", err)
	}
	return nil
}
