package toggle

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/nite/app/enum"
	"github.com/umputun/nite/app/page"
	"github.com/umputun/nite/app/store"
	"github.com/umputun/nite/app/toggle/mocks"
)

func TestController_Initialize(t *testing.T) {
	tests := []struct {
		name      string
		stored    string // empty means never written
		wantClass bool
		wantLabel string
		wantMode  enum.Mode
	}{
		{name: "no stored preference", stored: "", wantClass: false, wantLabel: LabelInactive, wantMode: enum.ModeDisabled},
		{name: "enabled", stored: "enabled", wantClass: true, wantLabel: LabelActive, wantMode: enum.ModeEnabled},
		{name: "disabled", stored: "disabled", wantClass: false, wantLabel: LabelInactive, wantMode: enum.ModeDisabled},
		{name: "unknown value", stored: "on", wantClass: false, wantLabel: LabelInactive, wantMode: enum.ModeDisabled},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			st := store.NewMemory()
			if tc.stored != "" {
				require.NoError(t, st.Set(ctx, StoreKey, []byte(tc.stored)))
			}
			doc := newTestPage(t)

			c := New(st, doc)
			require.NoError(t, c.Initialize(ctx))

			assert.Equal(t, tc.wantClass, doc.HasClass(ClassName))
			assert.Equal(t, tc.wantLabel, doc.Text(ControlID))
			assert.Equal(t, tc.wantMode, c.Mode())

			// initialization never writes
			v, err := st.Get(ctx, StoreKey)
			if tc.stored == "" {
				require.ErrorIs(t, err, store.ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.stored, string(v))
		})
	}
}

func TestController_InitializeKeepsAuthoredLabel(t *testing.T) {
	doc, err := page.Parse(strings.NewReader(`<body><button id="niteToggle">Dark?</button></body>`))
	require.NoError(t, err)

	c := New(store.NewMemory(), doc)
	require.NoError(t, c.Initialize(context.Background()))
	assert.Equal(t, "Dark?", doc.Text(ControlID), "disabled branch leaves markup label alone")
}

func TestController_InitializeIdempotent(t *testing.T) {
	for _, stored := range []string{"", "enabled", "disabled"} {
		t.Run("stored="+stored, func(t *testing.T) {
			ctx := context.Background()
			st := store.NewMemory()
			if stored != "" {
				require.NoError(t, st.Set(ctx, StoreKey, []byte(stored)))
			}
			doc := newTestPage(t)
			c := New(st, doc)

			require.NoError(t, c.Initialize(ctx))
			classOnce, labelOnce := doc.HasClass(ClassName), doc.Text(ControlID)

			require.NoError(t, c.Initialize(ctx))
			assert.Equal(t, classOnce, doc.HasClass(ClassName))
			assert.Equal(t, labelOnce, doc.Text(ControlID))
		})
	}
}

func TestController_InitializeMissingControl(t *testing.T) {
	doc, err := page.Parse(strings.NewReader(`<body><p>no button here</p></body>`))
	require.NoError(t, err)

	st := &mocks.StoreMock{}
	c := New(st, doc)
	err = c.Initialize(context.Background())
	require.ErrorIs(t, err, ErrControlNotFound)
	assert.Contains(t, err.Error(), "#niteToggle")
	assert.Empty(t, st.GetCalls(), "store not touched on missing control")

	require.ErrorIs(t, c.OnActivate(context.Background()), ErrNotInitialized)
}

func TestController_InitializeStoreError(t *testing.T) {
	st := &mocks.StoreMock{
		GetFunc: func(ctx context.Context, key string) ([]byte, error) {
			return nil, errors.New("db is gone")
		},
	}
	doc := newTestPage(t)

	c := New(st, doc)
	err := c.Initialize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db is gone")
	assert.False(t, doc.HasClass(ClassName))
	require.ErrorIs(t, c.OnActivate(context.Background()), ErrNotInitialized)
}

func TestController_OnActivate(t *testing.T) {
	ctx := context.Background()

	t.Run("starting disabled", func(t *testing.T) {
		st := store.NewMemory()
		doc := newTestPage(t)
		c := New(st, doc)
		require.NoError(t, c.Initialize(ctx))

		require.NoError(t, c.OnActivate(ctx))
		assert.True(t, doc.HasClass(ClassName))
		assert.Equal(t, LabelActive, doc.Text(ControlID))
		assert.Equal(t, "enabled", storedValue(t, st))
		assert.Equal(t, enum.ModeEnabled, c.Mode())
	})

	t.Run("starting enabled", func(t *testing.T) {
		st := store.NewMemory()
		require.NoError(t, st.Set(ctx, StoreKey, []byte("enabled")))
		doc := newTestPage(t)
		c := New(st, doc)
		require.NoError(t, c.Initialize(ctx))

		require.NoError(t, c.OnActivate(ctx))
		assert.False(t, doc.HasClass(ClassName))
		assert.Equal(t, LabelInactive, doc.Text(ControlID))
		assert.Equal(t, "disabled", storedValue(t, st))
		assert.Equal(t, enum.ModeDisabled, c.Mode())
	})

	t.Run("before initialize", func(t *testing.T) {
		st := &mocks.StoreMock{}
		doc := newTestPage(t)
		c := New(st, doc)
		require.ErrorIs(t, c.OnActivate(ctx), ErrNotInitialized)
		assert.False(t, doc.HasClass(ClassName))
		assert.Empty(t, st.SetCalls())
	})
}

func TestController_ToggleInvolution(t *testing.T) {
	ctx := context.Background()
	for _, stored := range []string{"enabled", "disabled"} {
		t.Run(stored, func(t *testing.T) {
			st := store.NewMemory()
			require.NoError(t, st.Set(ctx, StoreKey, []byte(stored)))
			doc := newTestPage(t)
			c := New(st, doc)
			require.NoError(t, c.Initialize(ctx))
			classBefore := doc.HasClass(ClassName)

			require.NoError(t, c.OnActivate(ctx))
			require.NoError(t, c.OnActivate(ctx))

			assert.Equal(t, classBefore, doc.HasClass(ClassName))
			assert.Equal(t, stored, storedValue(t, st))
		})
	}
}

func TestController_PostActivationInvariant(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	doc := newTestPage(t)
	c := New(st, doc)
	require.NoError(t, c.Initialize(ctx))

	for i := range 7 {
		require.NoError(t, c.OnActivate(ctx))
		active := doc.HasClass(ClassName)
		assert.Equal(t, active, storedValue(t, st) == "enabled", "activation %d", i)
		assert.Equal(t, active, doc.Text(ControlID) == LabelActive, "activation %d", i)
	}
}

func TestController_OnActivateStoreError(t *testing.T) {
	st := &mocks.StoreMock{
		GetFunc: func(ctx context.Context, key string) ([]byte, error) { return nil, store.ErrNotFound },
		SetFunc: func(ctx context.Context, key string, value []byte) error { return errors.New("read-only") },
	}
	doc := newTestPage(t)
	c := New(st, doc)
	require.NoError(t, c.Initialize(context.Background()))

	err := c.OnActivate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "niteMode=enabled")
	assert.Contains(t, err.Error(), "read-only")

	// visual state has flipped already
	assert.True(t, doc.HasClass(ClassName))
	assert.Equal(t, LabelActive, doc.Text(ControlID))

	require.Len(t, st.SetCalls(), 1)
	assert.Equal(t, StoreKey, st.SetCalls()[0].Key)
	assert.Equal(t, []byte("enabled"), st.SetCalls()[0].Value)
}

func TestStored(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	m, err := Stored(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, enum.ModeDisabled, m)

	require.NoError(t, st.Set(ctx, StoreKey, []byte("enabled")))
	m, err = Stored(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, enum.ModeEnabled, m)

	failing := &mocks.StoreMock{
		GetFunc: func(ctx context.Context, key string) ([]byte, error) { return nil, errors.New("boom") },
	}
	_, err = Stored(ctx, failing)
	require.Error(t, err)
}

func newTestPage(t *testing.T) *page.Document {
	t.Helper()
	doc, err := page.Default()
	require.NoError(t, err)
	return doc
}

func storedValue(t *testing.T, st *store.Memory) string {
	t.Helper()
	v, err := st.Get(context.Background(), StoreKey)
	require.NoError(t, err)
	return string(v)
}
