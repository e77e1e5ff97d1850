package worker_test

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/baharkarakas/asso-backend/internal/worker"
)

func TestPoolRunsEveryJobBeforeStop(t *testing.T) {
	p := worker.NewPool(3, 100, nil)
	var n atomic.Int32
	for i := 0; i < 50; i++ {
		ok := p.Submit(worker.Job{Name: "count", Run: func() error {
			n.Add(1)
			return nil
		}})
		assert.True(t, ok)
	}
	p.Stop()
	assert.EqualValues(t, 50, n.Load())
}

func TestPoolSurvivesFailuresAndPanics(t *testing.T) {
	p := worker.NewPool(1, 10, nil)
	var done atomic.Bool
	p.Submit(worker.Job{Name: "fail", Run: func() error { return errors.New("boom") }})
	p.Submit(worker.Job{Name: "panic", Run: func() error { panic("boom") }})
	p.Submit(worker.Job{Name: "ok", Run: func() error { done.Store(true); return nil }})
	p.Stop()
	assert.True(t, done.Load())
}

func TestSubmitAfterStop(t *testing.T) {
	p := worker.NewPool(1, 1, nil)
	p.Stop()
	p.Stop()
	assert.False(t, p.Submit(worker.Job{Name: "late", Run: func() error { return nil }}))
}
