package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jm/colorscheme/internal/preference"
)

type journal struct {
	events []string
}

type stubWriter struct {
	j      *journal
	err    error
	writes []preference.Value
}

func (w *stubWriter) Write(_ context.Context, v preference.Value) error {
	w.j.events = append(w.j.events, "write:"+v.GSettings())
	w.writes = append(w.writes, v)
	return w.err
}

type stubReader struct {
	j     *journal
	value preference.Value
	ok    bool
}

func (r *stubReader) Read(context.Context) (preference.Value, bool) {
	r.j.events = append(r.j.events, "read")
	return r.value, r.ok
}

type stubSettler struct {
	j       *journal
	written []*preference.Value
}

func (s *stubSettler) Begin(context.Context) Wait {
	s.j.events = append(s.j.events, "arm")
	return func(_ context.Context, written *preference.Value) {
		s.j.events = append(s.j.events, "settle")
		s.written = append(s.written, written)
	}
}

func newBridge(j *journal, r *stubReader) (*Bridge, *stubWriter, *stubSettler) {
	w := &stubWriter{j: j}
	s := &stubSettler{j: j}
	return &Bridge{Writer: w, Reader: r, Settler: s, Log: zerolog.Nop()}, w, s
}

func TestRun_WriteBeforeRead(t *testing.T) {
	j := &journal{}
	b, w, s := newBridge(j, &stubReader{j: j, value: preference.Dark, ok: true})

	want := preference.Dark
	got, ok, err := b.Run(context.Background(), &want)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, preference.Dark, got)

	assert.Equal(t, []preference.Value{preference.Dark}, w.writes, "exactly one write with the requested value")
	assert.Equal(t, []string{"arm", "write:prefer-dark", "settle", "read"}, j.events)
	require.Len(t, s.written, 1)
	require.NotNil(t, s.written[0])
	assert.Equal(t, preference.Dark, *s.written[0])
}

func TestRun_EachValueMapsToOneWrite(t *testing.T) {
	for _, v := range []preference.Value{preference.NoPreference, preference.Light, preference.Dark} {
		t.Run(v.String(), func(t *testing.T) {
			j := &journal{}
			b, w, _ := newBridge(j, &stubReader{j: j, value: v, ok: true})

			want := v
			_, _, err := b.Run(context.Background(), &want)
			require.NoError(t, err)
			assert.Equal(t, []preference.Value{v}, w.writes)
			assert.Equal(t, "write:"+v.GSettings(), j.events[1])
		})
	}
}

func TestRun_ReadOnly(t *testing.T) {
	j := &journal{}
	b, w, s := newBridge(j, &stubReader{j: j, value: preference.Light, ok: true})

	got, ok, err := b.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, preference.Light, got)
	assert.Empty(t, w.writes)
	assert.Equal(t, []string{"arm", "settle", "read"}, j.events)
	require.Len(t, s.written, 1)
	assert.Nil(t, s.written[0])
}

func TestRun_NoValue(t *testing.T) {
	j := &journal{}
	b, _, _ := newBridge(j, &stubReader{j: j})

	got, ok, err := b.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, preference.NoPreference, got)
}

func TestRun_WriteFailureSkipsRead(t *testing.T) {
	j := &journal{}
	b, w, _ := newBridge(j, &stubReader{j: j, value: preference.Dark, ok: true})
	w.err = errors.New("launch gsettings: no such file")

	want := preference.Light
	_, ok, err := b.Run(context.Background(), &want)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"arm", "write:prefer-light"}, j.events)
}

func TestRun_DefaultSettler(t *testing.T) {
	j := &journal{}
	b := &Bridge{
		Writer: &stubWriter{j: j},
		Reader: &stubReader{j: j, value: preference.Dark, ok: true},
		Log:    zerolog.Nop(),
	}

	start := time.Now()
	_, ok, err := b.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), DefaultSettle)
}

func TestSleep(t *testing.T) {
	t.Run("waits", func(t *testing.T) {
		start := time.Now()
		Sleep(20*time.Millisecond).Begin(context.Background())(context.Background(), nil)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("zero returns immediately", func(t *testing.T) {
		start := time.Now()
		Sleep(0).Begin(context.Background())(context.Background(), nil)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		start := time.Now()
		Sleep(time.Hour).Begin(ctx)(ctx, nil)
		assert.Less(t, time.Since(start), time.Second)
	})
}
