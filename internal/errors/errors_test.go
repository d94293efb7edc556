package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_PreservesCode(t *testing.T) {
	base := InputEmpty("bh.csv")
	wrapped := Wrap(base, "upload failed")

	assert.Equal(t, CodeInputEmpty, GetCode(wrapped))
	assert.True(t, Is(wrapped, CodeInputEmpty))
	assert.Equal(t, "upload failed: bh.csv is empty", wrapped.Error())
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestWrap_PlainErrorIsInternal(t *testing.T) {
	err := Wrapf(fmt.Errorf("disk full"), "failed to write %s", "report.xlsx")
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Equal(t, "failed to write report.xlsx: disk full", err.Error())
}

func TestIs_WalksChain(t *testing.T) {
	err := fmt.Errorf("handler: %w", SchemaMissing("BOREHOLE"))
	assert.True(t, Is(err, CodeSchemaMissing))
	assert.False(t, Is(err, CodeNotFound))
	assert.False(t, Is(nil, CodeNotFound))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeConfigInvalid, stderrors.New("bad yaml"))
	assert.Equal(t, CodeConfigInvalid, GetCode(err))
	assert.Nil(t, WithCode(CodeConfigInvalid, nil))
}

func TestSchemaMissing_Message(t *testing.T) {
	assert.Equal(t, "required column is missing: 'Depth'", SchemaMissing("Depth").Error())
	assert.Equal(t, "required columns are missing: 'BOREHOLE', 'Depth'", SchemaMissing("BOREHOLE", "Depth").Error())
}
