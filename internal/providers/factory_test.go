package providers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"lexassist/internal/config"
	"lexassist/internal/models"
	"lexassist/internal/providers/mocks"
)

func testResolver(env map[string]string) *config.Resolver {
	r := config.NewResolver(nil)
	r.Getenv = func(key string) string { return env[key] }
	return r
}

// recordingFactory returns a factory whose builder hands out the given mocks by provider
// identity and records every construction
func recordingFactory(env map[string]string, byID map[models.ProviderID]Provider, built *[]models.ProviderID) *Factory {
	return NewFactory(testResolver(env), false, time.Second).WithBuilder(func(cfg models.ModelConfig) Provider {
		*built = append(*built, cfg.Provider)
		return byID[cfg.Provider]
	})
}

func missing(errs ...string) models.ModelAvailability {
	return models.ModelAvailability{Errors: errs}
}

func TestCreateProvider(t *testing.T) {
	f := NewFactory(testResolver(nil), false, time.Second)

	local, err := f.CreateProvider(runtimeConfig(models.ProviderOllamaLocal, config.DefaultOllamaLocal))
	require.NoError(t, err)
	assert.IsType(t, &OllamaProvider{}, local)

	sim, err := f.CreateProvider(mockConfig())
	require.NoError(t, err)
	assert.IsType(t, &SimulatedProvider{}, sim)

	_, err = f.CreateProvider(models.ModelConfig{Provider: "openai"})
	assert.ErrorIs(t, err, ErrUnknownProvider)

	_, err = f.CreateProvider(models.ModelConfig{Provider: models.ProviderOllamaRemote})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestFallbackSimulatedReturnsImmediately(t *testing.T) {
	ctrl := gomock.NewController(t)
	sim := mocks.NewMockProvider(ctrl)
	sim.EXPECT().CheckAvailability(gomock.Any()).Times(0)

	var built []models.ProviderID
	f := recordingFactory(nil, map[models.ProviderID]Provider{models.ProviderMock: sim}, &built)

	selection, err := f.CreateFallbackProvider(context.Background(), mockConfig())
	require.NoError(t, err)
	assert.Same(t, sim, selection.Provider)
	assert.False(t, selection.FellBack)
	assert.Equal(t, []models.ProviderID{models.ProviderMock}, built)
}

func TestFallbackHealthyPrimary(t *testing.T) {
	ctrl := gomock.NewController(t)
	local := mocks.NewMockProvider(ctrl)
	local.EXPECT().CheckAvailability(gomock.Any()).
		Return(models.ModelAvailability{TextModel: true, VisionModel: true}).Times(1)

	var built []models.ProviderID
	f := recordingFactory(nil, map[models.ProviderID]Provider{models.ProviderOllamaLocal: local}, &built)

	cfg := f.Resolver().ResolveConfig()
	selection, err := f.CreateFallbackProvider(context.Background(), cfg)
	require.NoError(t, err)

	assert.Same(t, local, selection.Provider)
	assert.False(t, selection.FellBack)
	require.NotNil(t, selection.Availability)
	assert.True(t, selection.Availability.TextModel)
	assert.Len(t, built, 1)
}

func TestFallbackLocalToRemote(t *testing.T) {
	ctrl := gomock.NewController(t)
	local := mocks.NewMockProvider(ctrl)
	remote := mocks.NewMockProvider(ctrl)
	local.EXPECT().CheckAvailability(gomock.Any()).Return(missing("Vision model llava:7b not found.")).Times(1)
	// The alternate is returned without a second check
	remote.EXPECT().CheckAvailability(gomock.Any()).Times(0)

	env := map[string]string{
		config.EnvModelProvider: "ollama-local",
		config.EnvRemoteURL:     "http://gpu:11434",
	}
	var built []models.ProviderID
	f := recordingFactory(env, map[models.ProviderID]Provider{
		models.ProviderOllamaLocal:  local,
		models.ProviderOllamaRemote: remote,
	}, &built)

	var fallbacks []models.ProviderID
	f.OnFallback = func(from, to models.ProviderID) { fallbacks = append(fallbacks, from, to) }

	selection, err := f.CreateFallbackProvider(context.Background(), f.Resolver().ResolveConfig())
	require.NoError(t, err)

	assert.Same(t, remote, selection.Provider)
	assert.True(t, selection.FellBack)
	assert.Nil(t, selection.Availability)
	assert.Equal(t, "http://gpu:11434", selection.Config.APIURL)
	assert.Equal(t, models.ProviderOllamaLocal, selection.Primary.Provider)
	assert.Equal(t, []models.ProviderID{models.ProviderOllamaLocal, models.ProviderOllamaRemote}, built)
	assert.Equal(t, []models.ProviderID{models.ProviderOllamaLocal, models.ProviderOllamaRemote}, fallbacks)
}

func TestFallbackLocalWithoutRemoteUsesSimulator(t *testing.T) {
	ctrl := gomock.NewController(t)
	local := mocks.NewMockProvider(ctrl)
	sim := mocks.NewMockProvider(ctrl)
	local.EXPECT().CheckAvailability(gomock.Any()).Return(missing("Failed to connect to local Ollama instance")).Times(1)
	sim.EXPECT().CheckAvailability(gomock.Any()).Times(0)

	var built []models.ProviderID
	f := recordingFactory(nil, map[models.ProviderID]Provider{
		models.ProviderOllamaLocal: local,
		models.ProviderMock:        sim,
	}, &built)

	selection, err := f.CreateFallbackProvider(context.Background(), f.Resolver().ResolveConfig())
	require.NoError(t, err)

	assert.Same(t, sim, selection.Provider)
	assert.Equal(t, models.ProviderMock, selection.Config.Provider)
	assert.Equal(t, []models.ProviderID{models.ProviderOllamaLocal, models.ProviderMock}, built)
}

func TestFallbackRemoteToLocal(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mocks.NewMockProvider(ctrl)
	local := mocks.NewMockProvider(ctrl)
	remote.EXPECT().CheckAvailability(gomock.Any()).Return(missing("Text model gemma3:4b not found.")).Times(1)
	local.EXPECT().CheckAvailability(gomock.Any()).Times(0)

	env := map[string]string{config.EnvRemoteURL: "http://gpu:11434"}
	var built []models.ProviderID
	f := recordingFactory(env, map[models.ProviderID]Provider{
		models.ProviderOllamaRemote: remote,
		models.ProviderOllamaLocal:  local,
	}, &built)

	selection, err := f.CreateFallbackProvider(context.Background(), f.Resolver().ResolveConfig())
	require.NoError(t, err)

	assert.Same(t, local, selection.Provider)
	assert.Equal(t, config.DefaultOllamaLocal, selection.Config.APIURL)
	// One primary plus exactly one alternate
	assert.Len(t, built, 2)
}

func TestFallbackRejectsUnconfiguredPrimary(t *testing.T) {
	var built []models.ProviderID
	f := recordingFactory(nil, nil, &built)

	_, err := f.CreateFallbackProvider(context.Background(), models.ModelConfig{Provider: models.ProviderOllamaRemote})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Empty(t, built)
}

func TestFallbackWithRealSimulator(t *testing.T) {
	server := fakeRuntime(t, []string{"gemma3:4b"}, nil)
	env := map[string]string{config.EnvLocalHost: server.URL}
	f := NewFactory(testResolver(env), false, time.Second)

	selection, err := f.CreateFallbackProvider(context.Background(), f.Resolver().ResolveConfig())
	require.NoError(t, err)

	assert.True(t, selection.FellBack)
	assert.IsType(t, &SimulatedProvider{}, selection.Provider)
}
