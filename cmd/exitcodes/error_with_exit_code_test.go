package exitcodes

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGetInnerErrorAndExitCode will test exit code resolution for nil, generic and coded errors
func TestGetInnerErrorAndExitCode(t *testing.T) {
	inner := errors.New("malformed compiler output")

	err, exitCode := GetInnerErrorAndExitCode(nil)
	assert.NoError(t, err)
	assert.Equal(t, ExitCodeSuccess, exitCode)

	err, exitCode = GetInnerErrorAndExitCode(inner)
	assert.Equal(t, inner, err)
	assert.Equal(t, ExitCodeGeneralError, exitCode)

	err, exitCode = GetInnerErrorAndExitCode(NewErrorWithExitCode(inner, ExitCodeBuildError))
	assert.Equal(t, inner, err)
	assert.Equal(t, ExitCodeBuildError, exitCode)

	// Coded errors are found through wrapping
	wrapped := fmt.Errorf("inspect: %w", NewErrorWithExitCode(inner, ExitCodeDiagnostics))
	err, exitCode = GetInnerErrorAndExitCode(wrapped)
	assert.Equal(t, inner, err)
	assert.Equal(t, ExitCodeDiagnostics, exitCode)
	assert.True(t, errors.Is(wrapped, inner))
}
