//go:build e2e

package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/jdwit/ssh-auth-analyzer/internal/analyzer"
	"github.com/jdwit/ssh-auth-analyzer/internal/config"
	"github.com/jdwit/ssh-auth-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	localstackEndpoint = "http://localhost:4566"
	testRegion         = "eu-west-1"
	testBucket         = "test-auth-logs"
	testLogGroup       = "/ssh/alerts"
	testObjectKey      = "hosts/bastion/auth.log.gz"
)

func sampleAuthLog() string {
	var b strings.Builder
	for i := 0; i < 6; i++ {
		fmt.Fprintf(&b, "Aug  6 10:15:%02d bastion sshd[100]: Failed password for root from 203.0.113.7 port %d ssh2\n", i, 4000+i)
	}
	b.WriteString("Aug  6 10:16:00 bastion sshd[101]: Failed password for alice from 10.0.0.5 port 5000 ssh2\n")
	b.WriteString("Aug  6 10:16:01 bastion sshd[101]: Accepted password for alice from 10.0.0.5 port 5001 ssh2\n")
	b.WriteString("Aug  6 10:17:00 bastion systemd[1]: Started Session 42 of user alice.\n")
	return b.String()
}

func newLocalStackSession() *session.Session {
	return session.Must(session.NewSession(&aws.Config{
		Region:           aws.String(testRegion),
		Endpoint:         aws.String(localstackEndpoint),
		Credentials:      credentials.NewStaticCredentials("test", "test", ""),
		S3ForcePathStyle: aws.Bool(true),
	}))
}

func gzipBytes(data []byte) []byte {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write(data)
	gz.Close()
	return buf.Bytes()
}

func setupS3(t *testing.T, sess *session.Session) {
	t.Helper()
	s3Client := s3.New(sess)

	_, err := s3Client.CreateBucket(&s3.CreateBucketInput{
		Bucket: aws.String(testBucket),
	})
	if err != nil {
		t.Logf("Bucket may already exist: %v", err)
	}

	_, err = s3Client.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(testBucket),
		Key:    aws.String(testObjectKey),
		Body:   bytes.NewReader(gzipBytes([]byte(sampleAuthLog()))),
	})
	require.NoError(t, err)
}

func setupCloudWatch(t *testing.T, sess *session.Session, stream string) {
	t.Helper()
	cwClient := cloudwatchlogs.New(sess)

	_, err := cwClient.CreateLogGroup(&cloudwatchlogs.CreateLogGroupInput{
		LogGroupName: aws.String(testLogGroup),
	})
	if err != nil {
		t.Logf("Log group may already exist: %v", err)
	}

	_, err = cwClient.CreateLogStream(&cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(testLogGroup),
		LogStreamName: aws.String(stream),
	})
	if err != nil {
		t.Logf("Log stream may already exist: %v", err)
	}
}

func getCloudWatchEvents(t *testing.T, sess *session.Session, stream string) []*cloudwatchlogs.OutputLogEvent {
	t.Helper()
	cwClient := cloudwatchlogs.New(sess)

	time.Sleep(500 * time.Millisecond)

	resp, err := cwClient.GetLogEvents(&cloudwatchlogs.GetLogEventsInput{
		LogGroupName:  aws.String(testLogGroup),
		LogStreamName: aws.String(stream),
		StartFromHead: aws.Bool(true),
	})
	require.NoError(t, err)
	return resp.Events
}

func TestE2E_LambdaEvent(t *testing.T) {
	sess := newLocalStackSession()
	stream := "e2e-lambda"

	setupS3(t, sess)
	setupCloudWatch(t, sess, stream)

	outDir := t.TempDir()
	t.Setenv("OUTPUT_DIR", outDir)
	t.Setenv("REPORTS", "html,csv")
	t.Setenv("NOTIFIER", "none")
	t.Setenv("OUTPUTS", "cloudwatch")
	t.Setenv("CLOUDWATCH_LOG_GROUP", testLogGroup)
	t.Setenv("CLOUDWATCH_LOG_STREAM", stream)
	t.Setenv("UPLOAD_S3_URL", "s3://"+testBucket+"/reports")

	cfg, err := config.Load()
	require.NoError(t, err)

	a, err := analyzer.New(cfg, sess)
	require.NoError(t, err)

	event := events.S3Event{
		Records: []events.S3EventRecord{
			{
				S3: events.S3Entity{
					Bucket: events.S3Bucket{Name: testBucket},
					Object: events.S3Object{Key: testObjectKey},
				},
			},
		},
	}
	require.NoError(t, a.HandleLambdaEvent(context.Background(), event))

	assert.FileExists(t, filepath.Join(outDir, filepath.FromSlash(testObjectKey), "report.html"))
	assert.FileExists(t, filepath.Join(outDir, filepath.FromSlash(testObjectKey), "log_entries.csv"))

	cwEvents := getCloudWatchEvents(t, sess, stream)
	require.Len(t, cwEvents, 1, "Expected one alert event in CloudWatch")
	assert.Contains(t, *cwEvents[0].Message, "203.0.113.7")
	assert.Contains(t, *cwEvents[0].Message, "ssh_consecutive_failures")

	resp, err := s3.New(sess).ListObjectsV2(&s3.ListObjectsV2Input{
		Bucket: aws.String(testBucket),
		Prefix: aws.String("reports/" + testObjectKey + "/"),
	})
	require.NoError(t, err)
	assert.Len(t, resp.Contents, 2)
}

func TestE2E_RunS3URL(t *testing.T) {
	sess := newLocalStackSession()
	stream := "e2e-cli"

	setupS3(t, sess)
	setupCloudWatch(t, sess, stream)

	t.Setenv("OUTPUT_DIR", t.TempDir())
	t.Setenv("REPORTS", "summary")
	t.Setenv("NOTIFIER", "log")
	t.Setenv("OUTPUTS", "cloudwatch")
	t.Setenv("CLOUDWATCH_LOG_GROUP", testLogGroup)
	t.Setenv("CLOUDWATCH_LOG_STREAM", stream)

	cfg, err := config.Load()
	require.NoError(t, err)

	a, err := analyzer.New(cfg, sess)
	require.NoError(t, err)

	analysis, err := a.Run(context.Background(), "s3://"+testBucket+"/"+testObjectKey)
	require.NoError(t, err)
	require.Len(t, analysis.Results, 2)
	assert.True(t, analysis.Results[1].AlertTriggered)

	assert.Len(t, getCloudWatchEvents(t, sess, stream), 1)
}

func TestE2E_MissingObject(t *testing.T) {
	sess := newLocalStackSession()
	setupS3(t, sess)

	t.Setenv("OUTPUT_DIR", t.TempDir())
	t.Setenv("REPORTS", "summary")
	t.Setenv("NOTIFIER", "none")

	cfg, err := config.Load()
	require.NoError(t, err)

	a, err := analyzer.New(cfg, sess)
	require.NoError(t, err)

	_, err = a.Run(context.Background(), "s3://"+testBucket+"/hosts/missing/auth.log")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInputNotFound)
	assert.Equal(t, 2, types.ExitCode(err))
}
