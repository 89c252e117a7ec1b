package errors

import (
	stderrors "errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := ConfigInvalid("BOOTSTRAP_CONFIDENCE must be in (0, 1)")
	err := Wrap(base, "failed to load bootstrap configuration")

	assert.Equal(t, CodeConfigInvalid, GetCode(err))
	assert.Equal(t, "failed to load bootstrap configuration: BOOTSTRAP_CONFIDENCE must be in (0, 1)", err.Error())
	assert.True(t, stderrors.Is(err, base))
}

func TestWrapPlainErrorIsInternal(t *testing.T) {
	err := Wrapf(stderrors.New("boom"), "step %d", 3)
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Equal(t, "step 3: boom", err.Error())
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestIOErrorUnwraps(t *testing.T) {
	err := IOError("/tmp/gt.xlsx", fs.ErrNotExist)
	assert.True(t, stderrors.Is(err, fs.ErrNotExist))
	assert.Equal(t, CodeIOError, GetCode(err))
	assert.True(t, IsAppError(err))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeInvalidInput, stderrors.New("bad header"))
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
	assert.False(t, IsAppError(stderrors.New("plain")))
}
