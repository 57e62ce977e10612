package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	errs    []error
	panics  []any
	flushed bool
}

func (r *recorder) CaptureException(err error, _ map[string]string) { r.errs = append(r.errs, err) }
func (r *recorder) CapturePanic(v any, _ map[string]string)         { r.panics = append(r.panics, v) }
func (r *recorder) Flush(time.Duration)                             { r.flushed = true }

func TestGlobalMonitor(t *testing.T) {
	rec := &recorder{}
	Init(rec)
	defer Init(nil)

	CaptureException(nil, nil)
	CaptureException(errors.New("boom"), map[string]string{"vessel": "v1"})
	CapturePanic(nil, nil)
	CapturePanic("bad", nil)
	Flush(time.Second)

	assert.Len(t, rec.errs, 1)
	assert.Equal(t, []any{"bad"}, rec.panics)
	assert.True(t, rec.flushed)

	Init(nil)
	assert.IsType(t, NopMonitor{}, Current())
}
