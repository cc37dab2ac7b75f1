package mirror

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apkaudio/openair/internal/logging"
	"github.com/apkaudio/openair/internal/sched"
	"github.com/apkaudio/openair/pkg/adapters/memory"
	"github.com/apkaudio/openair/pkg/domain"
)

func newTestMirror(t *testing.T, opts ...Option) (*Mirror, *memory.Bus, *sched.Loop) {
	t.Helper()
	bus := memory.NewBus()
	loop := sched.New(64)
	opts = append([]Option{WithLogger(logging.NewNop())}, opts...)
	return New(bus, loop, opts...), bus, loop
}

func newModel(t *testing.T, def float64) *domain.ValueModel {
	t.Helper()
	m, err := domain.NewValueModel(0, 100, def, false)
	require.NoError(t, err)
	return m
}

func remotePayload(t *testing.T, val any) []byte {
	t.Helper()
	data, err := json.Marshal(map[string]any{"val": val, "ts": 1.0, "guid": "peer"})
	require.NoError(t, err)
	return data
}

func TestRegisterRejectsDuplicateTopic(t *testing.T) {
	m, _, _ := newTestMirror(t)
	ctx := context.Background()

	_, err := m.Register(ctx, "studio/gain", newModel(t, 50))
	require.NoError(t, err)

	_, err = m.Register(ctx, "studio/gain", newModel(t, 50))
	assert.ErrorIs(t, err, domain.ErrDuplicateTopic)
}

func TestRegisterRejectsEmptyTopic(t *testing.T) {
	m, _, _ := newTestMirror(t)
	_, err := m.Register(context.Background(), "", newModel(t, 50))

	var cfgErr *domain.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestPublishLocalSendsExactlyOncePerChange(t *testing.T) {
	m, bus, _ := newTestMirror(t)
	ctx := context.Background()
	model := newModel(t, 50)

	_, err := m.Register(ctx, "studio/gain", model)
	require.NoError(t, err)

	applied, err := m.PublishLocal(ctx, "studio/gain", 80)
	require.NoError(t, err)
	assert.Equal(t, 80.0, applied)
	assert.Equal(t, 80.0, model.Current())
	assert.Len(t, bus.PublishedTo("studio/gain"), 1)

	// Same applied value: no second message.
	_, err = m.PublishLocal(ctx, "studio/gain", 80)
	require.NoError(t, err)
	assert.Len(t, bus.PublishedTo("studio/gain"), 1)

	// Out of range clamps; the clamped value is what goes on the wire.
	_, err = m.PublishLocal(ctx, "studio/gain", 250)
	require.NoError(t, err)
	msgs := bus.PublishedTo("studio/gain")
	require.Len(t, msgs, 2)

	var p struct {
		Val  float64 `json:"val"`
		GUID string  `json:"guid"`
	}
	require.NoError(t, json.Unmarshal(msgs[1].Payload, &p))
	assert.Equal(t, 100.0, p.Val)
	assert.Equal(t, m.GUID(), p.GUID)
}

func TestPublishLocalUnknownTopic(t *testing.T) {
	m, _, _ := newTestMirror(t)
	_, err := m.PublishLocal(context.Background(), "nope", 1)
	assert.ErrorIs(t, err, domain.ErrTopicNotFound)
}

func TestBroadcastPublishesUnconditionally(t *testing.T) {
	m, bus, _ := newTestMirror(t)
	ctx := context.Background()

	_, err := m.Register(ctx, "studio/gain", newModel(t, 50))
	require.NoError(t, err)

	require.NoError(t, m.Broadcast(ctx, "studio/gain"))
	require.NoError(t, m.Broadcast(ctx, "studio/gain"))
	assert.Len(t, bus.PublishedTo("studio/gain"), 2)
}

func TestRemoteMessageAppliesWithoutRepublish(t *testing.T) {
	m, bus, loop := newTestMirror(t)
	ctx := context.Background()
	model := newModel(t, 50)

	_, err := m.Register(ctx, "studio/gain", model)
	require.NoError(t, err)

	bus.Inject("studio/gain", remotePayload(t, 75))
	loop.Drain()

	assert.Equal(t, 75.0, model.Current())
	// Remote apply means redraw only; nothing went back on the wire.
	assert.Empty(t, bus.Published())
}

func TestOwnEchoIsIgnored(t *testing.T) {
	m, bus, loop := newTestMirror(t)
	ctx := context.Background()
	model := newModel(t, 50)

	_, err := m.Register(ctx, "studio/gain", model)
	require.NoError(t, err)

	// The in-process bus loops our own publication straight back.
	_, err = m.PublishLocal(ctx, "studio/gain", 80)
	require.NoError(t, err)

	model.Set(10)
	loop.Drain()

	// The echo did not re-apply the published value over the newer one.
	assert.Equal(t, 10.0, model.Current())
	assert.Len(t, bus.Published(), 1)
}

func TestMalformedPayloadIsDiscarded(t *testing.T) {
	var discards int
	hooks := domain.LifecycleHooks{
		OnDiscard: func(ctx context.Context, e *domain.TopicEvent) { discards++ },
	}
	m, bus, loop := newTestMirror(t, WithLifecycleHooks(hooks))
	ctx := context.Background()
	model := newModel(t, 50)

	_, err := m.Register(ctx, "studio/gain", model)
	require.NoError(t, err)

	bus.Inject("studio/gain", []byte("not json"))
	bus.Inject("studio/gain", remotePayload(t, "loud"))
	bus.Inject("studio/gain", remotePayload(t, nil))
	loop.Drain()

	assert.Equal(t, 50.0, model.Current())
	assert.Equal(t, 3, discards)
}

func TestRemoteStringValueCoerces(t *testing.T) {
	m, bus, loop := newTestMirror(t)
	ctx := context.Background()
	model := newModel(t, 50)

	_, err := m.Register(ctx, "studio/gain", model)
	require.NoError(t, err)

	bus.Inject("studio/gain", remotePayload(t, "62.5"))
	loop.Drain()

	assert.Equal(t, 62.5, model.Current())
}

func TestUnregisterIsIdempotentAndFreesTopic(t *testing.T) {
	m, bus, loop := newTestMirror(t)
	ctx := context.Background()
	model := newModel(t, 50)

	reg, err := m.Register(ctx, "studio/gain", model)
	require.NoError(t, err)

	reg.Unregister()
	reg.Unregister()

	// The topic is free for a new owner.
	_, err = m.Register(ctx, "studio/gain", newModel(t, 10))
	require.NoError(t, err)

	// The old subscription no longer feeds the old model.
	bus.Inject("studio/gain", remotePayload(t, 99))
	loop.Drain()
	assert.Equal(t, 50.0, model.Current())
}

func TestDispatchRoutesThroughScheduler(t *testing.T) {
	m, bus, loop := newTestMirror(t)
	ctx := context.Background()
	model := newModel(t, 50)

	_, err := m.Register(ctx, "studio/gain", model)
	require.NoError(t, err)

	require.NoError(t, m.Dispatch("studio/gain", 70))
	// Not applied until the panel goroutine runs.
	assert.Equal(t, 50.0, model.Current())

	loop.Drain()
	assert.Equal(t, 70.0, model.Current())
	assert.Len(t, bus.PublishedTo("studio/gain"), 1)

	assert.ErrorIs(t, m.Dispatch("nope", 1), domain.ErrTopicNotFound)
}

func TestSnapshotTracksAppliedValues(t *testing.T) {
	m, bus, loop := newTestMirror(t)
	ctx := context.Background()

	_, err := m.Register(ctx, "studio/gain", newModel(t, 50))
	require.NoError(t, err)
	_, err = m.Register(ctx, "studio/level", newModel(t, 10))
	require.NoError(t, err)

	_, err = m.PublishLocal(ctx, "studio/gain", 80)
	require.NoError(t, err)
	bus.Inject("studio/level", remotePayload(t, 20))
	loop.Drain()

	assert.Equal(t, map[string]float64{"studio/gain": 80, "studio/level": 20}, m.Snapshot())

	v, ok := m.Value("studio/gain")
	assert.True(t, ok)
	assert.Equal(t, 80.0, v)

	_, ok = m.Value("nope")
	assert.False(t, ok)

	assert.ElementsMatch(t, []string{"studio/gain", "studio/level"}, m.Topics())
}
