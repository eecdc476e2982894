package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseS3URL(t *testing.T) {
	t.Run("Valid S3 URL", func(t *testing.T) {
		obj, err := ParseS3URL("s3://mybucket/logs/auth.log")
		require.NoError(t, err)
		assert.Equal(t, "mybucket", obj.Bucket)
		assert.Equal(t, "logs/auth.log", obj.Key)
		assert.Equal(t, "s3://mybucket/logs/auth.log", obj.String())
	})

	t.Run("Missing s3 prefix", func(t *testing.T) {
		_, err := ParseS3URL("mybucket/mykey")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "s3://")
	})

	t.Run("No slash after bucket", func(t *testing.T) {
		_, err := ParseS3URL("s3://mybucket")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "separator")
	})

	t.Run("Empty bucket", func(t *testing.T) {
		_, err := ParseS3URL("s3:///key")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket")
	})
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input  string
		want   Status
		wantOK bool
	}{
		{"Failed", StatusFailed, true},
		{"failed", StatusFailed, true},
		{" ACCEPTED ", StatusAccepted, true},
		{"Disconnected", "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		got, ok := ParseStatus(tc.input)
		assert.Equal(t, tc.wantOK, ok, tc.input)
		assert.Equal(t, tc.want, got, tc.input)
	}
}

func TestAnalysis_Alerted(t *testing.T) {
	a := &Analysis{Results: []DetectionResult{
		{IP: "10.0.0.1", TotalFailures: 6, AlertTriggered: true},
		{IP: "10.0.0.2", TotalFailures: 2},
		{IP: "10.0.0.3", TotalFailures: 5, AlertTriggered: true},
	}}

	alerted := a.Alerted()
	require.Len(t, alerted, 2)
	assert.Equal(t, "10.0.0.1", alerted[0].IP)
	assert.Equal(t, "10.0.0.3", alerted[1].IP)
	assert.Equal(t, 13, a.TotalFailures())
}
