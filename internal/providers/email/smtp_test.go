package email

import (
	"context"
	"testing"

	"github.com/smallbiznis/gymdesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRenderReminder(t *testing.T) {
	body, err := RenderReminder(config.DefaultMembershipConfig().Reminder.Body, ReminderData{Name: "Ravi", DueDate: "2025-03-01"})
	require.NoError(t, err)
	assert.Contains(t, body, "Hello Ravi,")
	assert.Contains(t, body, "expired on 2025-03-01")

	_, err = RenderReminder("Hello {{.Nickname}}", ReminderData{Name: "Ravi"})
	assert.Error(t, err)
}

func TestBuildMessage(t *testing.T) {
	p := NewSMTP(Config{Host: "smtp.example.com", Port: 587, Username: "gym@example.com", FromName: "Gym Admin"})

	m, err := p.build(Message{To: " member@example.com ", Subject: "Due", Body: "pay"})
	require.NoError(t, err)
	assert.Equal(t, []string{"member@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Due"}, m.GetHeader("Subject"))
	assert.Equal(t, []string{`"Gym Admin" <gym@example.com>`}, m.GetHeader("From"))

	_, err = p.build(Message{Subject: "Due"})
	assert.Error(t, err)
}

func TestSendHonoursCancelledContext(t *testing.T) {
	p := NewSMTP(Config{Host: "127.0.0.1", Port: 1, Username: "gym@example.com"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Send(ctx, Message{To: "a@example.com"}), context.Canceled)
}

func TestNewFromConfigWithoutSMTP(t *testing.T) {
	provider := NewFromConfig(config.Config{}, zap.NewNop())
	_, ok := provider.(*NoOpProvider)
	assert.True(t, ok)
	assert.NoError(t, provider.Send(context.Background(), Message{To: "a@example.com"}))
}
