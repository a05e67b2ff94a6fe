package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecanvass/hypergeom"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"value": "0.2259296293959298"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("ITERATION_LIMIT", "tail walk needs 56 iterations, budget is 10", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, "ITERATION_LIMIT", resp.Error.Code)
	assert.Equal(t, "tail walk needs 56 iterations, budget is 10", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]string{"algorithm": "exact", "limit": "10"}
	err := formatter.Error("ITERATION_LIMIT", "budget exhausted", details)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("0.2259296293959298")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "0.2259296293959298")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("INPUT", `invalid k "x": not an integer`, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [INPUT]")
	assert.Contains(t, buf.String(), "not an integer")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"algorithm": "exact"}
	err := formatter.Error("ITERATION_LIMIT", "budget exhausted", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [ITERATION_LIMIT]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("using algorithm %s", "lanczos")

			if tt.wantLog {
				assert.Contains(t, buf.String(), "using algorithm lanczos")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestOutputFormatter_VerboseLogErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	diag := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "json",
		Writer:    out,
		ErrWriter: diag,
		Verbose:   true,
	}

	formatter.VerboseLog("using algorithm %s", "exact")

	assert.Empty(t, out.String(), "diagnostics must not corrupt the JSON stream")
	assert.Contains(t, diag.String(), "using algorithm exact")
}

func TestCLIResponse_JSON(t *testing.T) {
	resp := CLIResponse{
		Status: "ok",
		Data:   map[string]int{"lines": 42},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded CLIResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "ok", decoded.Status)
}

func TestCLIError_JSON(t *testing.T) {
	cliErr := CLIError{
		Code:    "INPUT",
		Message: "expected 5 fields (id k M sample N), got 3",
		Details: []string{"line 7"},
	}

	data, err := json.Marshal(cliErr)
	require.NoError(t, err)

	var decoded CLIError
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "INPUT", decoded.Code)
	assert.Equal(t, "expected 5 fields (id k M sample N), got 3", decoded.Message)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "computation failed")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain error")))

	wrapped := fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "inner"))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}

func TestExitErrorUnwrap(t *testing.T) {
	inner := hypergeom.NewIterationLimitError(
		hypergeom.Query{K: 30, M: 100, N: 50, Sample: 50}, hypergeom.Exact, 20, 10)
	err := WrapExitError(ExitFailure, "computation failed", inner)

	assert.True(t, hypergeom.IsIterationLimitError(err))
	assert.Contains(t, err.Error(), "computation failed")
	assert.Contains(t, err.Error(), "ITERATION_LIMIT")
}

func TestToCLIError(t *testing.T) {
	ce := toCLIError(hypergeom.NewArithmeticError(
		hypergeom.Query{K: 0, M: 3_000_000_000, N: 20, Sample: 10}, hypergeom.Exact,
		"population 3000000000 exceeds maximum 2147483648", nil))
	assert.Equal(t, "ARITHMETIC", ce.Code)
	assert.Contains(t, ce.Message, "exceeds maximum")

	ce = toCLIError(errors.New("disk on fire"))
	assert.Equal(t, ErrCodeCompute, ce.Code)
	assert.Equal(t, "disk on fire", ce.Message)
}

func TestOutputComputeErrorDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	q := hypergeom.Query{K: 3, M: 50, N: 20, Sample: 10}
	err := outputComputeError(formatter, hypergeom.NewIterationLimitError(q, hypergeom.Exact, 56, 10))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ITERATION_LIMIT", resp.Error.Code)

	details, ok := resp.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), details["k"])
	assert.Equal(t, float64(56), details["iterations"])
	assert.Equal(t, "10", details["limit"])
	assert.Equal(t, "exact", details["algorithm"])
}

func TestOutputCommandError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := outputCommandError(formatter, ErrCodeInput, `invalid k "x": not an integer`)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), `Error [INPUT]: invalid k "x": not an integer`)
}
