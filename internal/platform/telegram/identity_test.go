package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		first    string
		last     string
		expected string
	}{
		{"Ann", "", "Ann"},
		{"Ann", "Lee", "Ann Lee"},
		{" Ann ", " Lee ", "Ann Lee"},
		{"", "", ""},
	}

	for _, test := range tests {
		identity := Identity{FirstName: test.first, LastName: test.last}
		assert.Equal(t, test.expected, identity.DisplayName())
	}
}

func TestAwaitIdentityReturnsHostIdentity(t *testing.T) {
	provider := StaticProvider{Value: Identity{ID: 42, FirstName: "Ann"}}

	identity := AwaitIdentity(context.Background(), provider, time.Second, zerolog.Nop())

	assert.Equal(t, int64(42), identity.ID)
}

func TestAwaitIdentityFallsBackOnZeroIdentity(t *testing.T) {
	identity := AwaitIdentity(context.Background(), StaticProvider{}, time.Second, zerolog.Nop())

	assert.Equal(t, PlaceholderID, identity.ID)
	assert.Equal(t, "Dev User", identity.DisplayName())
}

func TestAwaitIdentityFallsBackOnError(t *testing.T) {
	provider := StaticProvider{Err: errors.New("host is not telegram")}

	identity := AwaitIdentity(context.Background(), provider, time.Second, zerolog.Nop())

	assert.Equal(t, PlaceholderID, identity.ID)
}

type blockingProvider struct{}

func (blockingProvider) Identity(ctx context.Context) (Identity, error) {
	<-ctx.Done()
	return Identity{}, ctx.Err()
}

func TestAwaitIdentityBoundedWait(t *testing.T) {
	start := time.Now()
	identity := AwaitIdentity(context.Background(), blockingProvider{}, 50*time.Millisecond, zerolog.Nop())

	assert.Equal(t, PlaceholderID, identity.ID, "never waits indefinitely")
	assert.Less(t, time.Since(start), time.Second)
}

func TestInitDataProviderEmpty(t *testing.T) {
	identity, err := InitDataProvider{}.Identity(context.Background())

	assert.NoError(t, err)
	assert.True(t, identity.Zero())
}

func TestHostBridgeSwallowsFailures(t *testing.T) {
	calls := 0
	bridge := NewHostBridge(func(event, payload string) error {
		calls++
		return errors.New("host gone")
	}, zerolog.Nop())

	// Не должно ни паниковать, ни возвращать ошибку
	bridge.Haptic(HapticSuccess)
	bridge.SendData("request_responses")
	bridge.SendData(map[string]string{"action": "support_request"})

	assert.Equal(t, 3, calls)
}

func TestHostBridgePayloadEncoding(t *testing.T) {
	var lastPayload string
	bridge := NewHostBridge(func(event, payload string) error {
		lastPayload = payload
		return nil
	}, zerolog.Nop())

	bridge.SendData("plain")
	assert.Equal(t, "plain", lastPayload)

	bridge.SendData(map[string]string{"action": "terminate_contract"})
	assert.JSONEq(t, `{"action":"terminate_contract"}`, lastPayload)
}
