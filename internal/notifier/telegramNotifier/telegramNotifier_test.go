package telegramNotifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

type fakeSender struct {
	to   tele.Recipient
	what interface{}
	err  error
}

func (s *fakeSender) Send(to tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	s.to, s.what = to, what
	return &tele.Message{}, s.err
}

func TestNotify(t *testing.T) {
	sender := &fakeSender{}
	n := NewWithSender(sender, 12345)

	require.NoError(t, n.Notify(context.Background(), "withdrawal completed"))
	assert.Equal(t, "12345", sender.to.Recipient())
	assert.Equal(t, "withdrawal completed", sender.what)

	sender.err = errors.New("bot was blocked")
	assert.Error(t, n.Notify(context.Background(), "again"))
}

func TestNotifyCancelled(t *testing.T) {
	sender := &fakeSender{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, NewWithSender(sender, 1).Notify(ctx, "x"), context.Canceled)
	assert.Nil(t, sender.what)
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.Notify(context.Background(), "ignored"))
}
