package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/barista/internal/domain"
)

func TestBuilder_Scenario(t *testing.T) {
	order, err := domain.NewOrderBuilder().
		SetBase("latte").
		SetSize("large").
		SetMilk("oat").
		AddSyrup("caramel").
		SetSugar(3).
		SetIced(true).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "latte", order.Base())
	assert.Equal(t, "large", order.Size())
	assert.Equal(t, "oat", order.Milk())
	assert.Equal(t, []string{"caramel"}, order.Syrups())
	assert.Equal(t, 3, order.Sugar())
	assert.True(t, order.Iced())

	menu := domain.DefaultMenu()
	want := menu.Bases["latte"] +
		menu.SizeSurchargeMinor("large") +
		menu.Milks["oat"] +
		menu.SyrupPriceMinor +
		3*menu.SugarPriceMinor +
		menu.IcedSurchargeMinor
	assert.Equal(t, want, order.PriceMinor())
	assert.Equal(t, int64(55000), order.PriceMinor())
	assert.InDelta(t, 550.00, order.Price(), 1e-9)
}

func TestBuilder_SettersReturnSameInstance(t *testing.T) {
	b := domain.NewOrderBuilder()

	assert.Same(t, b, b.SetBase("espresso"))
	assert.Same(t, b, b.SetSize("small"))
	assert.Same(t, b, b.SetMilk("whole"))
	assert.Same(t, b, b.AddSyrup("vanilla"))
	assert.Same(t, b, b.SetSugar(1))
	assert.Same(t, b, b.SetIced(false))
	assert.Same(t, b, b.ClearExtras())
	assert.Same(t, b, b.Reset())
}

func TestBuilder_Defaults(t *testing.T) {
	order, err := domain.NewOrderBuilder().SetBase("espresso").Build()
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultSize, order.Size())
	assert.Equal(t, domain.MilkNone, order.Milk())
	assert.False(t, order.HasMilk())
	assert.Empty(t, order.Syrups())
	assert.Zero(t, order.Sugar())
	assert.False(t, order.Iced())
}

func TestBuilder_MissingBase(t *testing.T) {
	_, err := domain.NewOrderBuilder().SetSize("small").Build()
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	assert.ErrorIs(t, err, domain.ErrMissingBase)
	assert.Contains(t, err.Error(), "missing required field: base")
}

func TestBuilder_NegativeSugarIsReportedEagerly(t *testing.T) {
	b := domain.NewOrderBuilder().SetBase("latte").SetSugar(2)

	b.SetSugar(-1)
	require.Error(t, b.Err())
	assert.ErrorIs(t, b.Err(), domain.ErrNegativeSugar)

	_, err := b.Build()
	require.Error(t, err)
	assert.True(t, domain.IsInvalidConfiguration(err))

	var cfgErr *domain.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "sugar", cfgErr.Field)
	assert.Equal(t, "-1", cfgErr.Value)
}

func TestBuilder_RejectsUnknownBase(t *testing.T) {
	b := domain.NewOrderBuilder().SetBase("frappuccino")

	_, err := b.Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedBase)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestBuilder_RejectsEmptySyrup(t *testing.T) {
	_, err := domain.NewOrderBuilder().SetBase("latte").AddSyrup("   ").Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptySyrup)
}

func TestBuilder_NormalizesNames(t *testing.T) {
	order, err := domain.NewOrderBuilder().
		SetBase("  Latte ").
		SetSize("LARGE").
		SetMilk(" Oat").
		AddSyrup("Caramel ").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "latte", order.Base())
	assert.Equal(t, "large", order.Size())
	assert.Equal(t, "oat", order.Milk())
	assert.Equal(t, []string{"caramel"}, order.Syrups())
}

func TestBuilder_SyrupOrderPreserved(t *testing.T) {
	order, err := domain.NewOrderBuilder().
		SetBase("latte").
		AddSyrup("caramel").
		AddSyrup("vanilla").
		AddSyrup("caramel").
		Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"caramel", "vanilla", "caramel"}, order.Syrups())
}

func TestBuilder_EachSyrupAddsFixedIncrement(t *testing.T) {
	menu := domain.DefaultMenu()
	b := domain.NewOrderBuilder().SetBase("americano").SetSize("small").SetMilk("soy").SetSugar(2)

	prev, err := b.Build()
	require.NoError(t, err)

	for _, syrup := range []string{"vanilla", "vanilla", "hazelnut", "chocolate", "caramel"} {
		next, err := b.AddSyrup(syrup).Build()
		require.NoError(t, err)
		assert.Equal(t, prev.PriceMinor()+menu.SyrupPriceMinor, next.PriceMinor(), "syrup %s", syrup)
		prev = next
	}
}

func TestBuilder_Determinism(t *testing.T) {
	configure := func() *domain.OrderBuilder {
		return domain.NewOrderBuilder().
			SetBase("cappuccino").
			SetSize("small").
			SetMilk("almond").
			AddSyrup("hazelnut").
			SetSugar(1).
			SetIced(true)
	}

	first, err := configure().Build()
	require.NoError(t, err)
	second, err := configure().Build()
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.Equal(t, first, second)
}

func TestBuilder_OrderIndependentOfLaterMutation(t *testing.T) {
	b := domain.NewOrderBuilder().SetBase("latte").AddSyrup("caramel")
	order, err := b.Build()
	require.NoError(t, err)

	b.AddSyrup("vanilla").SetIced(true).SetBase("espresso")

	assert.Equal(t, "latte", order.Base())
	assert.Equal(t, []string{"caramel"}, order.Syrups())
	assert.False(t, order.Iced())

	syrups := order.Syrups()
	syrups[0] = "mutated"
	assert.Equal(t, []string{"caramel"}, order.Syrups())
}

func TestBuilder_SizeIsMonotonic(t *testing.T) {
	price := func(size string) int64 {
		order, err := domain.NewOrderBuilder().SetBase("latte").SetSize(size).Build()
		require.NoError(t, err)
		return order.PriceMinor()
	}

	assert.Less(t, price("small"), price("medium"))
	assert.Less(t, price("medium"), price("large"))
}

func TestBuilder_UnknownSizeAcceptedVerbatim(t *testing.T) {
	order, err := domain.NewOrderBuilder().SetBase("latte").SetSize("venti").Build()
	require.NoError(t, err)

	assert.Equal(t, "venti", order.Size())
	assert.Equal(t, domain.DefaultMenu().Bases["latte"], order.PriceMinor())
}

func TestBuilder_ClearExtras(t *testing.T) {
	order, err := domain.NewOrderBuilder().
		SetBase("latte").
		SetSize("large").
		SetMilk("oat").
		AddSyrup("caramel").
		SetSugar(2).
		SetIced(true).
		ClearExtras().
		Build()
	require.NoError(t, err)

	assert.Equal(t, "large", order.Size())
	assert.Equal(t, domain.MilkNone, order.Milk())
	assert.Empty(t, order.Syrups())
	assert.Zero(t, order.Sugar())
	assert.False(t, order.Iced())
}

func TestBuilder_ResetAllowsReuse(t *testing.T) {
	b := domain.NewOrderBuilder().SetSugar(-5)
	require.Error(t, b.Err())

	b.Reset()
	require.NoError(t, b.Err())

	_, err := b.Build()
	assert.ErrorIs(t, err, domain.ErrMissingBase)

	order, err := b.SetBase("espresso").Build()
	require.NoError(t, err)
	assert.Equal(t, "espresso", order.Base())
}

func TestBuilder_IcedAndMilkSurcharges(t *testing.T) {
	hot, err := domain.NewOrderBuilder().SetBase("espresso").SetSize("small").Build()
	require.NoError(t, err)
	iced, err := domain.NewOrderBuilder().SetBase("espresso").SetSize("small").SetIced(true).Build()
	require.NoError(t, err)
	withMilk, err := domain.NewOrderBuilder().SetBase("espresso").SetSize("small").SetMilk("whole").Build()
	require.NoError(t, err)
	noneMilk, err := domain.NewOrderBuilder().SetBase("espresso").SetSize("small").SetMilk("none").Build()
	require.NoError(t, err)

	assert.Greater(t, iced.PriceMinor(), hot.PriceMinor())
	assert.Greater(t, withMilk.PriceMinor(), hot.PriceMinor())
	assert.Equal(t, hot.PriceMinor(), noneMilk.PriceMinor())
}

func TestBuilder_CustomMenu(t *testing.T) {
	menu := domain.DefaultMenu()
	menu.Bases["mocha"] = 35000
	menu.SugarPriceMinor = 500

	order, err := domain.NewOrderBuilderWithMenu(menu).SetBase("mocha").SetSize("small").SetSugar(2).Build()
	require.NoError(t, err)

	assert.Equal(t, int64(36000), order.PriceMinor())
}
