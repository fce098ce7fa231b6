package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Sternrassler/polls-client/internal/config"
	"github.com/Sternrassler/polls-client/internal/testutil"
	"github.com/Sternrassler/polls-client/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCmd executes pollsctl with args and returns what it wrote to stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Keep the caller's environment from enabling snapshot export.
	t.Setenv(config.EnvRedisAddr, "")

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--log-level", "disabled"}, args...))

	err := cmd.Execute()
	return stdout.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := runCmd(t, "version")
	require.NoError(t, err)

	assert.Contains(t, out, "pollsctl dev")
	assert.Contains(t, out, "commit: none")
	assert.Contains(t, out, "built:  unknown")
}

func TestPollsList(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetPollCount(3)

	out, err := runCmd(t, "--base-url", mock.URL(), "polls", "list", "--skip", "0", "--limit", "10")
	require.NoError(t, err)

	assert.Contains(t, out, "Fetched 3 polls:")
	assert.Contains(t, out, "- ID: 1, Question: Question 1?")
	assert.Contains(t, out, "- ID: 3, Question: Question 3?")

	requests := mock.GetPageRequests()
	require.Len(t, requests, 1)
	assert.Equal(t, testutil.PageRequest{Skip: 0, Limit: 10}, requests[0])
}

func TestPollsList_JSON(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetPollCount(2)

	out, err := runCmd(t, "--base-url", mock.URL(), "polls", "list", "--json")
	require.NoError(t, err)

	assert.Contains(t, out, `"question": "Question 2?"`)
	assert.NotContains(t, out, "Fetched")
}

func TestPollsList_NotFound(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/polls", testutil.NewNotFoundResponse())

	_, err := runCmd(t, "--base-url", mock.URL(), "polls", "list")
	require.Error(t, err)

	assert.ErrorIs(t, err, client.ErrNotFound)
	assert.Contains(t, err.Error(), "API error")
}

func TestPollsList_InvalidPageRequest(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	_, err := runCmd(t, "--base-url", mock.URL(), "polls", "list", "--limit", "0")
	require.Error(t, err)

	assert.ErrorIs(t, err, client.ErrInvalidPageRequest)
	assert.Zero(t, mock.GetRequestCount())
}

func TestPollsAll(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetPollCount(12)

	out, err := runCmd(t, "--base-url", mock.URL(), "polls", "all", "--batch-size", "5")
	require.NoError(t, err)

	assert.Contains(t, out, "Total polls: 12")
	assert.NotContains(t, out, "Snapshot stored")
	assert.Equal(t, []testutil.PageRequest{
		{Skip: 0, Limit: 5},
		{Skip: 5, Limit: 5},
		{Skip: 10, Limit: 5},
	}, mock.GetPageRequests())
}

func TestPollsAll_BatchSizeFromEnv(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetPollCount(8)

	t.Setenv(config.EnvBatchSize, "4")

	out, err := runCmd(t, "--base-url", mock.URL(), "polls", "all")
	require.NoError(t, err)

	assert.Contains(t, out, "Total polls: 8")
	assert.Equal(t, []testutil.PageRequest{
		{Skip: 0, Limit: 4},
		{Skip: 4, Limit: 4},
		{Skip: 8, Limit: 4},
	}, mock.GetPageRequests())
}

func TestPollsAll_ServerErrorMidDrain(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetPollCount(30)
	mock.FailPollsAt(10, testutil.NewServerErrorResponse())

	out, err := runCmd(t, "--base-url", mock.URL(), "polls", "all", "--batch-size", "10")
	require.Error(t, err)

	assert.Empty(t, out)
	assert.Equal(t, client.KindHTTP, client.KindOf(err))
}

func TestPollsAll_NegativeBatchSize(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	_, err := runCmd(t, "--base-url", mock.URL(), "polls", "all", "--batch-size", "-1")
	require.Error(t, err)
	assert.Zero(t, mock.GetRequestCount())
}

func TestPollsSnapshot_NoRedis(t *testing.T) {
	_, err := runCmd(t, "polls", "snapshot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no Redis address")
}

func TestRegister(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	out, err := runCmd(t, "--base-url", mock.URL(), "register", "-u", "john_doe", "-p", "securepassword123")
	require.NoError(t, err)

	assert.Contains(t, out, "User registered successfully:")
	assert.Contains(t, out, `"username": "john_doe"`)
}

func TestRegister_Duplicate(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.AddUser("john_doe")

	_, err := runCmd(t, "--base-url", mock.URL(), "register", "-u", "john_doe", "-p", "securepassword123")
	require.Error(t, err)

	var validationErr *client.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "Username already registered", validationErr.Detail)
	assert.Contains(t, err.Error(), "API error")
}

func TestRegister_MissingFlags(t *testing.T) {
	_, err := runCmd(t, "register", "-u", "john_doe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")
}

func TestTransportError(t *testing.T) {
	mock := testutil.NewMockAPI()
	url := mock.URL()
	mock.Close()

	_, err := runCmd(t, "--base-url", url, "polls", "list")
	require.Error(t, err)

	assert.Equal(t, client.KindTransport, client.KindOf(err))
	assert.Contains(t, err.Error(), "network error")
}

func TestInvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad base url", []string{"--base-url", "not-a-url", "polls", "list"}},
		{"bad log level", []string{"--log-level", "chatty", "polls", "list"}},
		{"missing config file", []string{"--config", "/nonexistent/pollsctl.yaml", "polls", "list"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCmd(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestMetricsFile(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetPollCount(3)

	path := filepath.Join(t.TempDir(), "pollsctl.prom")
	_, err := runCmd(t, "--base-url", mock.URL(), "--metrics-file", path, "polls", "all", "--batch-size", "2")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "polls_client_requests_total")
	assert.Contains(t, string(data), "polls_drain_pages_total")
}
