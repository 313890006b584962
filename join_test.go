package solrq

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Direct Construction Tests
// ============================================================================

func TestNewJoin(t *testing.T) {
	from, to := NewField("manu_id_s"), NewField("id")

	join, err := NewJoin(from, to)
	require.NoError(t, err)

	assert.Equal(t, from, join.From())
	assert.Equal(t, to, join.To())
	idx, ok := join.FromIndex()
	assert.False(t, ok)
	assert.Nil(t, idx)
	assert.False(t, join.IsZero())
}

func TestNewJoinWithIndex(t *testing.T) {
	from, to, core := NewField("product_id"), NewField("id"), NewField("products_core")

	join, err := NewJoinWithIndex(from, to, core)
	require.NoError(t, err)

	assert.Equal(t, from, join.From())
	assert.Equal(t, to, join.To())
	idx, ok := join.FromIndex()
	require.True(t, ok)
	assert.Equal(t, core, idx)
}

func TestNewJoinMissingFields(t *testing.T) {
	f := NewField("f")

	tests := []struct {
		name string
		fn   func() (Join, error)
	}{
		{"NilFrom", func() (Join, error) { return NewJoin(nil, f) }},
		{"NilTo", func() (Join, error) { return NewJoin(f, nil) }},
		{"BlankFrom", func() (Join, error) { return NewJoin(NewField(" "), f) }},
		{"NilFromIndex", func() (Join, error) { return NewJoinWithIndex(f, f, nil) }},
		{"NilPointerField", func() (Join, error) { return NewJoin((*SimpleField)(nil), f) }},
		{"NilCustomPointerFrom", func() (Join, error) { return NewJoin((*schemaField)(nil), f) }},
		{"NilCustomPointerTo", func() (Join, error) { return NewJoin(f, (*schemaField)(nil)) }},
		{"NilCustomPointerFromIndex", func() (Join, error) { return NewJoinWithIndex(f, f, (*schemaField)(nil)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			join, err := tt.fn()
			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.True(t, join.IsZero())
		})
	}
}

// ============================================================================
// Builder Tests
// ============================================================================

func TestJoinBuilderTo(t *testing.T) {
	from, to := NewField("manu_id_s"), NewField("id")

	built, err := JoinFrom(from).To(to)
	require.NoError(t, err)

	direct, err := NewJoin(from, to)
	require.NoError(t, err)

	assert.True(t, built.Equal(direct))
	assert.Equal(t, from, built.From())
	assert.Equal(t, to, built.To())
	_, ok := built.FromIndex()
	assert.False(t, ok)
}

func TestJoinBuilderSetToFromIndex(t *testing.T) {
	from, to, core := NewField("product_id"), NewField("id"), NewField("products_core")

	built, err := JoinFrom(from).SetTo(to).FromIndex(core)
	require.NoError(t, err)

	direct, err := NewJoinWithIndex(from, to, core)
	require.NoError(t, err)

	assert.True(t, built.Equal(direct))
	idx, ok := built.FromIndex()
	require.True(t, ok)
	assert.Equal(t, core, idx)
}

func TestJoinBuilderBuild(t *testing.T) {
	join, err := JoinFromName("a").SetToName("b").Build()
	require.NoError(t, err)
	assert.Equal(t, "a", join.From().Name())
	assert.Equal(t, "b", join.To().Name())

	_, err = JoinFromName("a").Build()
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestJoinBuilderNameSugar(t *testing.T) {
	byName, err := JoinFromName("product_id").SetToName("id").FromIndexName("products_core")
	require.NoError(t, err)

	byField, err := JoinFrom(NewField("product_id")).SetTo(NewField("id")).FromIndex(NewField("products_core"))
	require.NoError(t, err)

	assert.True(t, byName.Equal(byField))
	assert.Equal(t, byField, byName)
}

func TestJoinBuilderMissingArguments(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (Join, error)
	}{
		{"StartFromNil", func() (Join, error) { return JoinFrom(nil).ToName("id") }},
		{"StartFromNilCustomPointer", func() (Join, error) { return JoinFrom((*schemaField)(nil)).ToName("id") }},
		{"SetToNilCustomPointer", func() (Join, error) { return JoinFromName("a").SetTo((*schemaField)(nil)).FromIndexName("core") }},
		{"StartFromEmptyName", func() (Join, error) { return JoinFromName("").ToName("id") }},
		{"ToNil", func() (Join, error) { return JoinFromName("a").To(nil) }},
		{"ToEmptyName", func() (Join, error) { return JoinFromName("a").ToName("") }},
		{"SetToNil", func() (Join, error) { return JoinFromName("a").SetTo(nil).FromIndexName("core") }},
		{"SetToEmptyName", func() (Join, error) { return JoinFromName("a").SetToName("").FromIndexName("core") }},
		{"FromIndexNil", func() (Join, error) { return JoinFromName("a").SetToName("b").FromIndex(nil) }},
		{"FromIndexEmptyName", func() (Join, error) { return JoinFromName("a").SetToName("b").FromIndexName("\t") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			join, err := tt.fn()
			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.True(t, join.IsZero())
		})
	}
}

func TestJoinBuilderErrRecordsFirstFailure(t *testing.T) {
	jb := JoinFrom(nil)
	require.ErrorIs(t, jb.Err(), ErrInvalidArgument)
	first := jb.Err()

	jb.SetTo(nil)
	assert.Equal(t, first, jb.Err())
	assert.Contains(t, first.Error(), "from")

	assert.NoError(t, JoinFromName("a").SetToName("b").Err())
}

// ============================================================================
// Scenario Tests
// ============================================================================

func TestJoinScenarios(t *testing.T) {
	t.Run("TwoFields", func(t *testing.T) {
		join, err := JoinFromName("product_id").ToName("id")
		require.NoError(t, err)

		assert.Equal(t, "product_id", join.From().Name())
		assert.Equal(t, "id", join.To().Name())
		_, ok := join.FromIndex()
		assert.False(t, ok)
	})

	t.Run("CrossCollection", func(t *testing.T) {
		join, err := JoinFromName("product_id").SetToName("id").FromIndexName("products_core")
		require.NoError(t, err)

		assert.Equal(t, "product_id", join.From().Name())
		assert.Equal(t, "id", join.To().Name())
		idx, ok := join.FromIndex()
		require.True(t, ok)
		assert.Equal(t, "products_core", idx.Name())
	})
}

// ============================================================================
// Value Semantics Tests
// ============================================================================

func TestJoinImmutableAfterBuild(t *testing.T) {
	jb := JoinFromName("a").SetToName("b")

	first, err := jb.Build()
	require.NoError(t, err)

	second, err := jb.FromIndexName("core")
	require.NoError(t, err)

	_, ok := first.FromIndex()
	assert.False(t, ok, "completed join must not observe later builder steps")
	_, ok = second.FromIndex()
	assert.True(t, ok)
}

func TestJoinEqual(t *testing.T) {
	a, err := NewJoin(NewField("x"), NewField("y"))
	require.NoError(t, err)
	b, err := JoinFromName("x").ToName("y")
	require.NoError(t, err)
	c, err := JoinFromName("x").SetToName("y").FromIndexName("other")
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.True(t, Join{}.Equal(Join{}))
	assert.True(t, Join{}.IsZero())
}

func TestJoinConcurrentReads(t *testing.T) {
	join, err := JoinFromName("product_id").SetToName("id").FromIndexName("products_core")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = NewQueryBuilder().Join(join).Build()
			_ = join.From().Name()
			_, _ = join.FromIndex()
		}()
	}
	wg.Wait()

	assert.Equal(t, "product_id", join.From().Name())
}
