package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"go.uber.org/zap"

	"github.com/lakehouse-ops/dbxtag/internal/tagger"
)

// maxBatchEvents is the number of buffered events that triggers a
// PutLogEvents call before Close.
const maxBatchEvents = 500

// LogsClient abstracts the CloudWatch Logs calls used by the sink.
type LogsClient interface {
	CreateLogStream(
		ctx context.Context,
		input *cloudwatchlogs.CreateLogStreamInput,
		opts ...func(*cloudwatchlogs.Options),
	) (*cloudwatchlogs.CreateLogStreamOutput, error)

	PutLogEvents(
		ctx context.Context,
		input *cloudwatchlogs.PutLogEventsInput,
		opts ...func(*cloudwatchlogs.Options),
	) (*cloudwatchlogs.PutLogEventsOutput, error)
}

// IdentityClient abstracts the STS call used to stamp the caller identity.
type IdentityClient interface {
	GetCallerIdentity(
		ctx context.Context,
		input *sts.GetCallerIdentityInput,
		opts ...func(*sts.Options),
	) (*sts.GetCallerIdentityOutput, error)
}

// CloudWatchConfig selects the audit destination.
type CloudWatchConfig struct {
	Region    string
	LogGroup  string
	LogStream string
}

// CloudWatchSink writes one JSON log event per outcome to a CloudWatch
// Logs stream. The log group must already exist; the stream is created.
type CloudWatchSink struct {
	logs   LogsClient
	group  string
	stream string
	actor  string
	log    *zap.Logger
	now    func() time.Time

	pending []types.InputLogEvent
	errs    []error
}

// NewCloudWatchSink builds a sink from the default AWS config chain. The
// caller's STS identity is resolved once and recorded as the actor of
// every event.
func NewCloudWatchSink(ctx context.Context, cfg CloudWatchConfig, log *zap.Logger) (*CloudWatchSink, error) {
	var opts []func(*awscfg.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awscfg.WithRegion(cfg.Region))
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return newCloudWatchSink(ctx,
		cloudwatchlogs.NewFromConfig(awsCfg),
		sts.NewFromConfig(awsCfg),
		cfg, log, time.Now,
	)
}

func newCloudWatchSink(
	ctx context.Context,
	logs LogsClient,
	identity IdentityClient,
	cfg CloudWatchConfig,
	log *zap.Logger,
	now func() time.Time,
) (*CloudWatchSink, error) {
	if cfg.LogGroup == "" {
		return nil, errors.New("audit log group is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	ident, err := identity.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("STS GetCallerIdentity: %w", err)
	}
	actor := aws.ToString(ident.Arn)

	stream := cfg.LogStream
	if stream == "" {
		stream = DefaultStreamName(now())
	}

	_, err = logs.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(cfg.LogGroup),
		LogStreamName: aws.String(stream),
	})
	if err != nil && !isAlreadyExists(err) {
		return nil, fmt.Errorf("create log stream %s/%s: %w", cfg.LogGroup, stream, err)
	}

	log.Info("audit trail enabled",
		zap.String("log_group", cfg.LogGroup),
		zap.String("log_stream", stream),
		zap.String("actor", actor))

	return &CloudWatchSink{
		logs:   logs,
		group:  cfg.LogGroup,
		stream: stream,
		actor:  actor,
		log:    log,
		now:    now,
	}, nil
}

// DefaultStreamName returns the stream used when none is configured.
func DefaultStreamName(t time.Time) string {
	return "dbxtag/" + t.UTC().Format("20060102T150405Z")
}

// isAlreadyExists returns true if err is a CloudWatch Logs
// ResourceAlreadyExistsException.
func isAlreadyExists(err error) bool {
	var exists *types.ResourceAlreadyExistsException
	return errors.As(err, &exists)
}

// Record buffers the outcome and flushes once the batch is full. Failures
// are logged and reported again from Close; they never stop the run.
func (s *CloudWatchSink) Record(ctx context.Context, o tagger.Outcome) {
	now := s.now()
	s.pending = append(s.pending, types.InputLogEvent{
		Message:   aws.String(newEvent(now, s.actor, o).String()),
		Timestamp: aws.Int64(now.UnixMilli()),
	})
	if len(s.pending) >= maxBatchEvents {
		// A cancelled run still delivers the events it produced.
		if err := s.flush(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("audit flush failed", zap.Error(err))
		}
	}
}

// Close flushes buffered events and returns every flush error seen.
func (s *CloudWatchSink) Close(ctx context.Context) error {
	if err := s.flush(ctx); err != nil {
		s.log.Warn("audit flush failed", zap.Error(err))
	}
	return errors.Join(s.errs...)
}

func (s *CloudWatchSink) flush(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}
	batch := s.pending
	s.pending = nil

	_, err := s.logs.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  aws.String(s.group),
		LogStreamName: aws.String(s.stream),
		LogEvents:     batch,
	})
	if err != nil {
		err = fmt.Errorf("PutLogEvents %s/%s (%d events): %w", s.group, s.stream, len(batch), err)
		s.errs = append(s.errs, err)
		return err
	}
	s.log.Debug("audit events written", zap.Int("count", len(batch)))
	return nil
}
