package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapAndCodeOf(t *testing.T) {
	base := errors.New("dial tcp: timeout")
	err := fmt.Errorf("generate: %w", Wrap(CodeTransport, "request failed", base))

	require.True(t, IsCode(err, CodeTransport))
	require.False(t, IsCode(err, CodeDecode))
	require.Equal(t, CodeTransport, CodeOf(err))
	require.ErrorIs(t, err, base)
	require.Equal(t, "", CodeOf(base))
}

func TestAppErrorMessage(t *testing.T) {
	require.Equal(t, "empty", Wrap(CodeEmptyResult, "empty", nil).Error())
	require.Equal(t, "decode: bad", Wrap(CodeDecode, "decode", errors.New("bad")).Error())
}
