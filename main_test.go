package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricealert/packages/domain"
)

type stubRunner struct {
	res *domain.ExtractionResult
	err error
}

func (s stubRunner) Run(ctx context.Context, req domain.ExtractionRequest) (*domain.ExtractionResult, error) {
	return s.res, s.err
}

func TestProbePrintsResult(t *testing.T) {
	var out bytes.Buffer
	err := probe(context.Background(), stubRunner{res: &domain.ExtractionResult{Price: 1299, Currency: "INR", CurrencySymbol: "₹", ProductName: "Steel Bottle"}}, "https://www.ajio.com/p/1", &out)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 1299.0, got["price"])
	assert.Equal(t, "₹", got["currencySymbol"])
}

func TestProbeReportsFailure(t *testing.T) {
	var out bytes.Buffer
	err := probe(context.Background(), stubRunner{err: &domain.HTTPStatusError{Status: 503}}, "https://x.example", &out)
	assert.ErrorIs(t, err, errExtractionFailed)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 503.0, got["status"])
}

func TestRootCmdTestScheme(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{"test://demo"})
	cmd.SetErr(&bytes.Buffer{})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var got domain.ExtractionResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.True(t, got.TestMode)
	assert.Equal(t, "Test Product", got.ProductName)
}

func TestRootCmdRequiresURL(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}
