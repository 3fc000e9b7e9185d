package stuberr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOfSuccessOnNilError(t *testing.T) {
	assert.Equal(t, Success, CodeOf(nil))
}

func TestCodeOfExtractsWrappedCode(t *testing.T) {
	err := New(InvalidParameter, "bad width %d", 3)
	assert.Equal(t, InvalidParameter, CodeOf(err))
}

func TestCodeOfDefaultsUnrecognizedErrors(t *testing.T) {
	assert.Equal(t, InvalidState, CodeOf(errors.New("boom")))
}

func TestCodeOfUnwrapsThroughWrapping(t *testing.T) {
	base := New(TryAgain, "timed out")
	wrapped := errors.New("context: " + base.Error())
	// A plain string-wrapped error carries no Code at all, so it must
	// fall back to InvalidState rather than accidentally matching.
	assert.Equal(t, InvalidState, CodeOf(wrapped))

	viaFmt := fmtErrorf(base)
	assert.Equal(t, TryAgain, CodeOf(viaFmt))
}

func fmtErrorf(err error) error {
	return errors.Join(err)
}

func TestErrorStringIncludesCauseAndCode(t *testing.T) {
	err := New(InvalidState, "slot %d exhausted", 4)
	assert.Contains(t, err.Error(), "INVALID_STATE")
	assert.Contains(t, err.Error(), "slot 4 exhausted")
}

func TestCodeStringUnknownCode(t *testing.T) {
	assert.Equal(t, "Code(7)", Code(7).String())
}
