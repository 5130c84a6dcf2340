package progress

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerCounts(t *testing.T) {
	var buf bytes.Buffer
	tr := NewSpinnerTo(&buf, "Traversing")
	tr.Observe("/a.js")
	tr.Observe("/b.js")
	assert.Equal(t, 2, tr.Count())
	tr.FinishSuccess()
}

func TestTrackerFinishError(t *testing.T) {
	var buf bytes.Buffer
	tr := NewSpinnerTo(&buf, "Traversing")
	tr.FinishError(errors.New("boom"))
	assert.Contains(t, buf.String(), "Traversing error: boom")
}
