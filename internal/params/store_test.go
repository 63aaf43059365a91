package params_test

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/breakdown/internal/config"
	"github.com/mattjoyce/breakdown/internal/failure"
	"github.com/mattjoyce/breakdown/internal/params"
	"github.com/mattjoyce/breakdown/internal/params/mocks"
)

func TestBuiltinStore(t *testing.T) {
	set, err := params.BuiltinStore{}.Patterns("")
	require.NoError(t, err)
	assert.Equal(t, params.Builtin(), set)

	_, err = params.BuiltinStore{}.Patterns("search")
	assert.Equal(t, failure.KindConfigurationNotFound, failure.KindOf(err))
}

func TestConfigStore(t *testing.T) {
	cfg := &config.Config{
		SourcePath: "/cfg/config.yaml",
		Profiles: map[string]config.ProfileConfig{
			"search": {Two: config.TwoParams{
				Directive: config.ParamPatterns{Patterns: []string{"web"}},
				Layer:     config.ParamPatterns{Patterns: []string{"db"}},
			}},
			"partial": {Two: config.TwoParams{
				Directive: config.ParamPatterns{Patterns: []string{"web"}},
			}},
		},
	}
	store := params.NewConfigStore(cfg)

	set, err := store.Patterns("search")
	require.NoError(t, err)
	assert.Equal(t, []string{"web"}, set.Directive)

	set, err = store.Patterns("")
	require.NoError(t, err, "missing default profile falls back to builtin")
	assert.Equal(t, params.Builtin(), set)

	_, err = store.Patterns("partial")
	assert.Equal(t, failure.KindPatternNotDefined, failure.KindOf(err))

	_, err = store.Patterns("nope")
	var nf *failure.ConfigurationNotFound
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "/cfg/config.yaml", nf.Path)

	assert.Equal(t, []string{"partial", "search"}, store.Profiles())
}

func TestConfigStoreSnapshotIsolated(t *testing.T) {
	cfg := &config.Config{Profiles: map[string]config.ProfileConfig{
		"default": {Two: config.TwoParams{
			Directive: config.ParamPatterns{Patterns: []string{"to"}},
			Layer:     config.ParamPatterns{Patterns: []string{"task"}},
		}},
	}}
	store := params.NewConfigStore(cfg)
	cfg.Profiles["default"].Two.Directive.Patterns[0] = "changed"

	set, err := store.Patterns("default")
	require.NoError(t, err)
	assert.Equal(t, []string{"to"}, set.Directive)
}

func TestCachedStoreLoadsOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := mocks.NewMockPatternStore(ctrl)
	inner.EXPECT().Patterns("default").Return(params.Builtin(), nil).Times(1)
	inner.EXPECT().Patterns("prod").Return(params.PatternSet{}, &failure.ConfigurationNotFound{Profile: "prod"}).Times(1)

	store := params.NewCachedStore(inner)
	for i := 0; i < 3; i++ {
		set, err := store.Patterns("")
		require.NoError(t, err)
		assert.Equal(t, params.Builtin(), set)

		_, err = store.Patterns("prod")
		assert.Equal(t, failure.KindConfigurationNotFound, failure.KindOf(err))
	}
}

func TestCachedStoreReturnsCopies(t *testing.T) {
	store := params.NewCachedStore(params.BuiltinStore{})
	set, err := store.Patterns("")
	require.NoError(t, err)
	set.Directive[0] = "mutated"

	again, err := store.Patterns("")
	require.NoError(t, err)
	assert.Equal(t, "to", again.Directive[0])
}
