package mailservice

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSendVerificationEmail(t *testing.T) {
	mockMC := new(MockMessageConsumer)
	mockMailer := new(MockMailer)
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ctx, cancel := context.WithCancel(context.Background())

	s := &MailService{
		mb:     mockMC,
		m:      mockMailer,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	s.SendVerificationEmail()

	assert.Eventually(t, mockMailer.IsCalled, time.Second, 10*time.Millisecond, "expected an email to be sent")
	assert.Equal(t, "test@example.com", mockMailer.GetEmail())

	t.Cleanup(func() {
		s.Close()
	})
}
