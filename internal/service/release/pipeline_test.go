package release

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func recordingStage(name string, calls *[]string, err error) Stage {
	return Stage{Name: name, Run: func(context.Context) error {
		*calls = append(*calls, name)

		return err
	}}
}

// TestPipelineRun_Order runs every stage once, in order.
func TestPipelineRun_Order(t *testing.T) {
	t.Parallel()

	var calls []string

	p := NewPipeline(
		recordingStage("a", &calls, nil),
		recordingStage("b", &calls, nil),
		recordingStage("c", &calls, nil),
	)

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, calls)
	require.Equal(t, []string{"a", "b", "c"}, p.Names())

	for _, result := range report.Results {
		require.Equal(t, StatusSucceeded, result.Status)
	}

	_, failed := report.Failed()
	require.False(t, failed)
}

// TestPipelineRun_FailFast stops at the first error and skips the rest.
func TestPipelineRun_FailFast(t *testing.T) {
	t.Parallel()

	var calls []string

	p := NewPipeline(
		recordingStage("a", &calls, nil),
		recordingStage("b", &calls, errBoom),
		recordingStage("c", &calls, nil),
	)

	report, err := p.Run(context.Background())
	require.ErrorIs(t, err, errBoom)
	require.ErrorContains(t, err, "stage b")
	require.Equal(t, []string{"a", "b"}, calls)

	require.Equal(t, StatusSucceeded, report.Results[0].Status)
	require.Equal(t, StatusFailed, report.Results[1].Status)
	require.Equal(t, StatusSkipped, report.Results[2].Status)

	failed, ok := report.Failed()
	require.True(t, ok)
	require.Equal(t, "b", failed.Name)
}

// TestPipelineRun_Canceled does not start stages after cancellation.
func TestPipelineRun_Canceled(t *testing.T) {
	t.Parallel()

	var calls []string

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPipeline(recordingStage("a", &calls, nil)).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, calls)
}

// TestReportRender lists every stage with its status.
func TestReportRender(t *testing.T) {
	t.Parallel()

	var calls []string

	report, _ := NewPipeline(
		recordingStage("bundle", &calls, nil),
		recordingStage("manifest", &calls, errBoom),
		recordingStage("installer", &calls, nil),
	).Run(context.Background())

	var buf bytes.Buffer
	report.Render(&buf)

	out := buf.String()
	require.Contains(t, out, "bundle")
	require.Contains(t, out, "succeeded")
	require.Contains(t, out, "failed")
	require.Contains(t, out, "skipped")
	require.Contains(t, out, "total")
}
