package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/AnshRaj112/devcode-backend/internal/mailer"
)

type SinkMock struct {
	mock.Mock
}

func (m *SinkMock) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
