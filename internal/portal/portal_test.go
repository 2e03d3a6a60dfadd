package portal

import (
	"context"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jm/colorscheme/internal/preference"
)

type fakeObject struct {
	replies map[string]*dbus.Call
	calls   []string
	args    [][]interface{}
}

func (f *fakeObject) CallWithContext(_ context.Context, method string, _ dbus.Flags, args ...interface{}) *dbus.Call {
	f.calls = append(f.calls, method)
	f.args = append(f.args, args)
	if c, ok := f.replies[method]; ok {
		return c
	}
	return &dbus.Call{Err: errors.New("org.freedesktop.DBus.Error.UnknownMethod")}
}

func readerWith(obj *fakeObject, dialErr error) (*Reader, *bool) {
	closed := false
	r := &Reader{
		Log: zerolog.Nop(),
		dial: func() (caller, func() error, error) {
			if dialErr != nil {
				return nil, nil, dialErr
			}
			return obj, func() error { closed = true; return nil }, nil
		},
	}
	return r, &closed
}

func reply(v interface{}) *dbus.Call {
	return &dbus.Call{Body: []interface{}{v}}
}

func TestReader_ReadOne(t *testing.T) {
	tests := []struct {
		name string
		code uint32
		want preference.Value
	}{
		{"dark", 1, preference.Dark},
		{"light", 2, preference.Light},
		{"no preference", 0, preference.NoPreference},
		{"out of range", 3, preference.NoPreference},
		{"large", 255, preference.NoPreference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := &fakeObject{replies: map[string]*dbus.Call{
				readOneMethod: reply(dbus.MakeVariant(tt.code)),
			}}
			r, closed := readerWith(obj, nil)

			got, ok := r.Read(context.Background())
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []string{readOneMethod}, obj.calls)
			assert.Equal(t, []interface{}{AppearanceNamespace, ColorSchemeKey}, obj.args[0])
			assert.True(t, *closed, "connection should be closed")
		})
	}
}

func TestReader_FallsBackToRead(t *testing.T) {
	obj := &fakeObject{replies: map[string]*dbus.Call{
		readMethod: reply(dbus.MakeVariant(dbus.MakeVariant(uint32(2)))),
	}}
	r, _ := readerWith(obj, nil)

	got, ok := r.Read(context.Background())
	require.True(t, ok)
	assert.Equal(t, preference.Light, got)
	assert.Equal(t, []string{readOneMethod, readMethod}, obj.calls)
}

func TestReader_NoValue(t *testing.T) {
	t.Run("no session bus", func(t *testing.T) {
		r, _ := readerWith(nil, errors.New("dbus: DBUS_SESSION_BUS_ADDRESS not set"))
		_, ok := r.Read(context.Background())
		assert.False(t, ok)
	})

	t.Run("both calls fail", func(t *testing.T) {
		obj := &fakeObject{}
		r, closed := readerWith(obj, nil)
		_, ok := r.Read(context.Background())
		assert.False(t, ok)
		assert.Len(t, obj.calls, 2)
		assert.True(t, *closed)
	})

	t.Run("wrong reply type", func(t *testing.T) {
		obj := &fakeObject{replies: map[string]*dbus.Call{
			readOneMethod: reply(dbus.MakeVariant("prefer-dark")),
		}}
		r, _ := readerWith(obj, nil)
		_, ok := r.Read(context.Background())
		assert.False(t, ok)
	})

	t.Run("empty reply", func(t *testing.T) {
		obj := &fakeObject{replies: map[string]*dbus.Call{
			readOneMethod: {Body: nil},
		}}
		r, _ := readerWith(obj, nil)
		_, ok := r.Read(context.Background())
		assert.False(t, ok)
	})
}

func TestUnwrapCode(t *testing.T) {
	code, ok := unwrapCode(uint32(1))
	assert.True(t, ok)
	assert.Equal(t, uint32(1), code)

	code, ok = unwrapCode(dbus.MakeVariant(dbus.MakeVariant(dbus.MakeVariant(uint32(2)))))
	assert.True(t, ok)
	assert.Equal(t, uint32(2), code)

	_, ok = unwrapCode(int32(1))
	assert.False(t, ok)

	_, ok = unwrapCode(nil)
	assert.False(t, ok)
}
