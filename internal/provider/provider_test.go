package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/seenimoa/mortgagewatch/internal/infra"
	"github.com/seenimoa/mortgagewatch/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockFetcher implements the Fetcher interface for testing.
type mockFetcher struct {
	BaseFetcher
	fetchFn func(ctx context.Context, params QueryParams) (*FetchResult, error)
}

func newMockFetcher(model ModelType, required []string) *mockFetcher {
	return &mockFetcher{
		BaseFetcher: NewBaseFetcher(model, "mock fetcher for "+string(model), required, nil),
	}
}

func (m *mockFetcher) Fetch(ctx context.Context, params QueryParams) (*FetchResult, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, params)
	}
	return &FetchResult{
		Data:      "mock-data",
		FetchedAt: time.Now(),
	}, nil
}

// mockProvider implements the Provider interface for testing.
type mockProvider struct {
	BaseProvider
}

func newMockProvider(name string, models ...ModelType) *mockProvider {
	mp := &mockProvider{
		BaseProvider: NewBaseProvider(name, "Mock "+name, "https://example.com", nil),
	}
	for _, m := range models {
		mp.RegisterFetcher(newMockFetcher(m, nil))
	}
	return mp
}

// --- Registry Tests ---

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	p := newMockProvider("test-provider", ModelMortgageRate, ModelTreasuryYield)

	require.NoError(t, p.Init(nil))
	require.NoError(t, reg.Register(p))

	got, err := reg.Get("test-provider")
	require.NoError(t, err)
	assert.Equal(t, "test-provider", got.Info().Name)
}

func TestRegistryRegisterEmptyName(t *testing.T) {
	reg := NewRegistry()
	assert.Error(t, reg.Register(newMockProvider("", ModelMortgageRate)))
}

func TestRegistryGetNotFound(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("nonexistent")
	var nf *ErrProviderNotFound
	assert.ErrorAs(t, err, &nf)
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newMockProvider("beta", ModelMortgageRate)))
	require.NoError(t, reg.Register(newMockProvider("alpha", ModelTreasuryYield)))

	list := reg.List()
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "beta", list[1].Name)
}

func TestRegistryProvidersForAndDefaults(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newMockProvider("mnd", ModelMortgageRate)))
	require.NoError(t, reg.Register(newMockProvider("fred", ModelMortgageRate, ModelTreasuryYield)))

	assert.Equal(t, []string{"mnd", "fred"}, reg.ProvidersFor(ModelMortgageRate))
	assert.Empty(t, reg.ProvidersFor(ModelCountyUnemployment))

	name, ok := reg.DefaultProvider(ModelMortgageRate)
	require.True(t, ok)
	assert.Equal(t, "mnd", name, "first registration becomes the default")

	require.NoError(t, reg.SetDefault(ModelMortgageRate, "fred"))
	name, _ = reg.DefaultProvider(ModelMortgageRate)
	assert.Equal(t, "fred", name)

	var nf *ErrProviderNotFound
	assert.ErrorAs(t, reg.SetDefault(ModelMortgageRate, "nope"), &nf)
	var ns *ErrModelNotSupported
	assert.ErrorAs(t, reg.SetDefault(ModelPlaceUnemployment, "fred"), &ns)
}

func TestRegistryUnregister(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newMockProvider("a", ModelMortgageRate)))
	require.NoError(t, reg.Register(newMockProvider("b", ModelMortgageRate)))

	reg.Unregister("a")
	_, err := reg.Get("a")
	assert.Error(t, err)

	name, ok := reg.DefaultProvider(ModelMortgageRate)
	require.True(t, ok)
	assert.Equal(t, "b", name)

	reg.Unregister("b")
	_, ok = reg.DefaultProvider(ModelMortgageRate)
	assert.False(t, ok)
}

func TestRegistryFetch(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newMockProvider("p", ModelMortgageRate)))

	res, err := reg.Fetch(context.Background(), ModelMortgageRate, nil)
	require.NoError(t, err)
	assert.Equal(t, "p", res.Provider)
	assert.Equal(t, ModelMortgageRate, res.Model)
	assert.Equal(t, "mock-data", res.Data)
	assert.False(t, res.FetchedAt.IsZero())
}

func TestRegistryFetchMissingParam(t *testing.T) {
	reg := NewRegistry()
	p := &mockProvider{BaseProvider: NewBaseProvider("p", "", "", nil)}
	p.RegisterFetcher(newMockFetcher(ModelPlaceUnemployment, []string{ParamPlaces}))
	require.NoError(t, reg.Register(p))

	_, err := reg.Fetch(context.Background(), ModelPlaceUnemployment, QueryParams{})
	var mp *ErrMissingParam
	require.ErrorAs(t, err, &mp)
	assert.Equal(t, ParamPlaces, mp.Param)
}

func TestRegistryFetchUnsupportedModel(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newMockProvider("p", ModelMortgageRate)))

	_, err := reg.Fetch(context.Background(), ModelTreasuryYield, QueryParams{ParamProvider: "p"})
	var ns *ErrModelNotSupported
	assert.ErrorAs(t, err, &ns)

	_, err = reg.Fetch(context.Background(), ModelTreasuryYield, nil)
	var nf *ErrProviderNotFound
	assert.ErrorAs(t, err, &nf)
}

func TestRegistryFetchWithProviderOverride(t *testing.T) {
	reg := NewRegistry()
	a := newMockProvider("a", ModelMortgageRate)
	b := &mockProvider{BaseProvider: NewBaseProvider("b", "", "", nil)}
	bf := newMockFetcher(ModelMortgageRate, nil)
	bf.fetchFn = func(ctx context.Context, params QueryParams) (*FetchResult, error) {
		return NewResult("from-b"), nil
	}
	b.RegisterFetcher(bf)
	require.NoError(t, reg.Register(a))
	require.NoError(t, reg.Register(b))

	res, err := reg.Fetch(context.Background(), ModelMortgageRate, QueryParams{ParamProvider: "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", res.Provider)
	assert.Equal(t, "from-b", res.Data)
}

func TestRegistryFetchDoesNotFallBack(t *testing.T) {
	reg := NewRegistry()
	bad := &mockProvider{BaseProvider: NewBaseProvider("bad", "", "", nil)}
	calls := 0
	f := newMockFetcher(ModelMortgageRate, nil)
	f.fetchFn = func(ctx context.Context, params QueryParams) (*FetchResult, error) {
		calls++
		return nil, NewFetchError("bad", ErrNotFound, nil)
	}
	bad.RegisterFetcher(f)
	require.NoError(t, reg.Register(bad))
	require.NoError(t, reg.Register(newMockProvider("good", ModelMortgageRate)))

	_, err := reg.Fetch(context.Background(), ModelMortgageRate, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, calls, "a failed fetch is not retried")
}

func TestRegistryFetchClassifiesPlainErrors(t *testing.T) {
	reg := NewRegistry()
	p := &mockProvider{BaseProvider: NewBaseProvider("p", "", "", nil)}
	f := newMockFetcher(ModelTreasuryYield, nil)
	f.fetchFn = func(ctx context.Context, params QueryParams) (*FetchResult, error) {
		return nil, errors.New("connection refused")
	}
	p.RegisterFetcher(f)
	require.NoError(t, reg.Register(p))

	_, err := reg.Fetch(context.Background(), ModelTreasuryYield, nil)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, "p", SourceOf(err))
}

func TestModelCoverage(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newMockProvider("fred", ModelMortgageRate, ModelTreasuryYield)))
	require.NoError(t, reg.Register(newMockProvider("bls", ModelCountyUnemployment)))

	cov := reg.ModelCoverage()
	assert.Equal(t, []string{"fred"}, cov[ModelTreasuryYield])
	assert.Equal(t, []string{"bls"}, cov[ModelCountyUnemployment])
	_, ok := cov[ModelPlaceUnemployment]
	assert.False(t, ok)
}

// --- Base Tests ---

func TestBaseProviderInit(t *testing.T) {
	bp := NewBaseProvider("fred", "", "", []ProviderCredential{
		{Name: "api_key", Required: true, EnvVar: "FRED_API_KEY"},
	})

	err := bp.Init(map[string]string{})
	var ic *ErrInvalidCredentials
	require.ErrorAs(t, err, &ic)
	assert.Equal(t, "fred", ic.Provider)

	require.NoError(t, bp.Init(map[string]string{"api_key": "secret"}))
	assert.Equal(t, "secret", bp.Credential("api_key"))
}

func TestBaseProviderRegisterFetcher(t *testing.T) {
	bp := NewBaseProvider("x", "", "", nil)
	bp.RegisterFetcher(newMockFetcher(ModelCountyUnemployment, nil))
	bp.RegisterFetcher(newMockFetcher(ModelMortgageRate, nil))

	assert.Equal(t, []ModelType{ModelMortgageRate, ModelCountyUnemployment}, bp.SupportedModels())
	assert.Equal(t, bp.SupportedModels(), bp.Info().Models)
	assert.NotNil(t, bp.Fetcher(ModelMortgageRate))
	assert.Nil(t, bp.Fetcher(ModelTreasuryYield))
}

func TestCacheKey(t *testing.T) {
	a := CacheKey(ModelPlaceUnemployment, QueryParams{ParamPlaces: "Queens", ParamEndYear: "2023"})
	b := CacheKey(ModelPlaceUnemployment, QueryParams{ParamEndYear: "2023", ParamPlaces: "Queens"})
	assert.Equal(t, a, b)
	assert.Equal(t, "PlaceUnemployment:end_year=2023:places=Queens", a)
	assert.NotEqual(t, a, CacheKey(ModelCountyUnemployment, QueryParams{ParamPlaces: "Queens", ParamEndYear: "2023"}))
}

func TestValidateParams(t *testing.T) {
	assert.NoError(t, ValidateParams(QueryParams{ParamSymbol: "^TNX"}, []string{ParamSymbol}))
	assert.Error(t, ValidateParams(QueryParams{ParamSymbol: ""}, []string{ParamSymbol}))
	assert.Error(t, ValidateParams(nil, []string{ParamSymbol}))
}

func TestAllModels(t *testing.T) {
	assert.Len(t, AllModels(), 4)
}

// --- Error Tests ---

func TestFetchErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("div.value missing")
	err := fmt.Errorf("wrapped: %w", NewFetchError("mnd", ErrNotFound, cause))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrParse)
	assert.Equal(t, ErrNotFound, KindOf(err))
	assert.Equal(t, "mnd", SourceOf(err))
	assert.Equal(t, "mnd: element not found: div.value missing", errors.Unwrap(err).Error())

	assert.Nil(t, KindOf(errors.New("plain")))
	assert.Equal(t, "", SourceOf(errors.New("plain")))
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify("x", nil))

	err := Classify("yfinance", fmt.Errorf("get: %w", context.DeadlineExceeded))
	assert.ErrorIs(t, err, ErrNetwork)

	err = Classify("census", &infra.ErrHTTP{StatusCode: 500, Status: "500 Internal Server Error"})
	assert.ErrorIs(t, err, ErrNetwork)

	err = Classify("bls", fmt.Errorf("%w: bad json", infra.ErrDecode))
	assert.ErrorIs(t, err, ErrParse)

	orig := NewFetchError("mnd", ErrSchemaMismatch, nil)
	assert.Same(t, orig, Classify("other", orig))
}

// --- Param Tests ---

func TestSplitJoinList(t *testing.T) {
	assert.Equal(t, []string{"Queens", "New York"}, SplitList(" Queens, ,New York "))
	assert.Empty(t, SplitList(""))
	assert.Equal(t, "Queens,Bronx", JoinList([]string{"Queens", "Bronx"}))
}

func TestEncodeDecodeSeriesKeepsOrder(t *testing.T) {
	in := []models.CountySeries{
		{County: "Richmond", SeriesID: "LAUCN360850000000003"},
		{County: "Bronx", SeriesID: "LAUCN360050000000003"},
		{County: "Kings", SeriesID: "LAUCN360470000000003"},
	}
	enc := EncodeSeries(in)
	assert.Equal(t, "Richmond=LAUCN360850000000003,Bronx=LAUCN360050000000003,Kings=LAUCN360470000000003", enc)
	assert.Equal(t, in, DecodeSeries(enc))

	assert.Equal(t, []models.CountySeries{{County: "LAUCN1", SeriesID: "LAUCN1"}}, DecodeSeries("LAUCN1"))
}

func TestRegistryClearDefault(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newMockProvider("mnd", ModelMortgageRate)))
	reg.ClearDefault(ModelMortgageRate)

	_, ok := reg.DefaultProvider(ModelMortgageRate)
	assert.False(t, ok)
	_, err := reg.Fetch(context.Background(), ModelMortgageRate, nil)
	var nf *ErrProviderNotFound
	assert.ErrorAs(t, err, &nf)
}

func TestKindName(t *testing.T) {
	assert.Equal(t, "schema_mismatch", KindName(NewFetchError("bls", ErrSchemaMismatch, nil)))
	assert.Equal(t, "network", KindName(Classify("x", errors.New("reset"))))
	assert.Equal(t, "", KindName(errors.New("plain")))
}
