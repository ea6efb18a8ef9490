package worker

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/carewatch-api/pkg/logger"
)

func TestOutboxCleanup_DeletesBeforeRetention(t *testing.T) {
	repo := new(mockOutboxRepo)
	w := NewOutboxCleanupWorker(repo, 24*time.Hour, time.Hour, logger.Nop())

	repo.On("DeleteProcessedBefore", mock.Anything, mock.MatchedBy(func(before time.Time) bool {
		return time.Since(before) >= 24*time.Hour && time.Since(before) < 25*time.Hour
	})).Return(int64(3), nil).Once()

	w.Cleanup(context.Background())
	repo.AssertExpectations(t)
}

func TestOutboxCleanup_ErrorIsLogged(t *testing.T) {
	repo := new(mockOutboxRepo)
	w := NewOutboxCleanupWorker(repo, time.Hour, time.Hour, logger.Nop())

	repo.On("DeleteProcessedBefore", mock.Anything, mock.Anything).Return(int64(0), stderrors.New("db down")).Once()

	assert.NotPanics(t, func() { w.Cleanup(context.Background()) })
	repo.AssertExpectations(t)
}

func TestOutboxCleanup_StopsOnCancel(t *testing.T) {
	repo := new(mockOutboxRepo)
	w := NewOutboxCleanupWorker(repo, time.Hour, time.Hour, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup worker did not stop")
	}
}
