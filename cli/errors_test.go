package cli

import (
	"bytes"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/importledger/input"
	"github.com/robinvdvleuten/importledger/ledger"
)

func TestErrorRenderer_RenderWithHint(t *testing.T) {
	err := &ledger.SaveError{Path: "/data/ledger_10_2026.xlsx", Err: fs.ErrPermission}

	output := NewErrorRenderer().Render(err)
	assert.Contains(t, output, "cannot save /data/ledger_10_2026.xlsx: check write permissions")
	assert.Contains(t, output, "Close the file")

	lines := strings.Split(output, "\n")
	foundIndentedHint := false
	for _, line := range lines {
		if strings.HasPrefix(line, "   ") && strings.Contains(line, "Close the file") {
			foundIndentedHint = true
		}
	}
	assert.True(t, foundIndentedHint, "expected the hint indented below the message")
}

func TestErrorRenderer_RenderPlain(t *testing.T) {
	output := NewErrorRenderer().Render(errors.New("something went wrong"))
	assert.Equal(t, "something went wrong", output)
}

func TestErrorRenderer_RenderJoined(t *testing.T) {
	err := errors.Join(
		&input.FieldError{Field: "client", Reason: "is required"},
		&input.FieldError{Field: "quantity", Value: "0", Reason: "must be greater than zero"},
	)

	output := NewErrorRenderer().Render(err)
	assert.Contains(t, output, "2 problems:")
	assert.Contains(t, output, "   - client: is required")
	assert.Contains(t, output, `   - quantity: must be greater than zero (got "0")`)
}

func TestErrorRenderer_RenderAll(t *testing.T) {
	r := NewErrorRenderer()
	assert.Equal(t, "", r.RenderAll(nil))
	assert.Equal(t, "first\n\nsecond", r.RenderAll([]error{errors.New("first"), errors.New("second")}))
}

func TestFail(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		err := fail(&buf, false, "transaction not saved", errors.New("disk full"))

		cmdErr, ok := err.(*CommandError)
		assert.True(t, ok)
		assert.Equal(t, 1, cmdErr.ExitCode())
		assert.Contains(t, buf.String(), "disk full")
		assert.Contains(t, buf.String(), "transaction not saved")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		err := fail(&buf, true, "ignored", &ledger.InvalidRateError{Input: "abc", Err: errors.New("bad")})

		_, ok := err.(*CommandError)
		assert.True(t, ok)
		assert.Contains(t, buf.String(), `"type": "rate"`)
		assert.NotContains(t, buf.String(), "ignored")
	})
}
