package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/primefinance/backend/internal/models"
)

func TestFanout_Publish(t *testing.T) {
	var got []string
	ok := SinkFunc(func(_ context.Context, e models.LedgerEvent) error {
		got = append(got, e.Type)
		return nil
	})
	failing := SinkFunc(func(context.Context, models.LedgerEvent) error {
		return errors.New("broker unavailable")
	})

	f := NewFanout(failing, nil, ok)
	err := f.Publish(context.Background(), models.LedgerEvent{Type: models.EventDepositCompleted})

	assert.EqualError(t, err, "broker unavailable")
	assert.Equal(t, []string{models.EventDepositCompleted}, got)
}

func TestFanout_Empty(t *testing.T) {
	assert.NoError(t, NewFanout().Publish(context.Background(), models.LedgerEvent{}))
}
