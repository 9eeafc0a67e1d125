package domain_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/barista/internal/domain"
)

// helper для сборки заказа из сценария витрины.
func makeOrder(t *testing.T) domain.Order {
	t.Helper()
	order, err := domain.NewOrderBuilder().
		SetBase("latte").
		SetSize("large").
		SetMilk("oat").
		AddSyrup("caramel").
		SetSugar(3).
		SetIced(true).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return order
}

func TestOrderString(t *testing.T) {
	order := makeOrder(t)

	want := "latte size=large milk=oat syrups=[caramel] sugar=3 iced=true price=550.00"
	if got := order.String(); got != want {
		t.Fatalf("unexpected string:\n got %q\nwant %q", got, want)
	}
}

func TestOrderDescription(t *testing.T) {
	cases := []struct {
		name  string
		build func(b *domain.OrderBuilder) *domain.OrderBuilder
		want  string
	}{
		{
			name:  "plain",
			build: func(b *domain.OrderBuilder) *domain.OrderBuilder { return b.SetBase("espresso").SetSize("small") },
			want:  "small espresso",
		},
		{
			name: "one sugar",
			build: func(b *domain.OrderBuilder) *domain.OrderBuilder {
				return b.SetBase("americano").SetSugar(1)
			},
			want: "medium americano 1 tsp sugar",
		},
		{
			name: "everything",
			build: func(b *domain.OrderBuilder) *domain.OrderBuilder {
				return b.SetBase("latte").SetSize("large").SetMilk("oat").
					AddSyrup("caramel").AddSyrup("vanilla").SetIced(true).SetSugar(3)
			},
			want: "large latte with oat milk + caramel, vanilla syrup (iced) 3 tsps sugar",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order, err := tc.build(domain.NewOrderBuilder()).Build()
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			if got := order.Description(); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestOrderSnapshotRestore(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	order := makeOrder(t).WithID("order-1").WithCreatedAt(now)

	rec := order.Snapshot()
	rec.Syrups[0] = "changed"
	if order.Syrups()[0] != "caramel" {
		t.Fatal("snapshot must not share syrups with the order")
	}

	rec.Syrups[0] = "caramel"
	restored := domain.RestoreOrder(rec)
	if !restored.Equal(order) {
		t.Fatalf("restored order differs: %v vs %v", restored, order)
	}
	if restored.ID() != "order-1" || !restored.CreatedAt().Equal(now) {
		t.Fatalf("identity lost on restore: %s %s", restored.ID(), restored.CreatedAt())
	}
}

func TestRestoreOrderKeepsStoredPrice(t *testing.T) {
	rec := makeOrder(t).Snapshot()
	rec.PriceMinor = 12345

	if got := domain.RestoreOrder(rec).PriceMinor(); got != 12345 {
		t.Fatalf("expected stored price, got %d", got)
	}
}

func TestOrderWithIDReturnsCopy(t *testing.T) {
	order := makeOrder(t)
	stamped := order.WithID("abc")

	if order.ID() != "" {
		t.Fatalf("original order must stay untouched, got id %q", order.ID())
	}
	if stamped.ID() != "abc" {
		t.Fatalf("unexpected id %q", stamped.ID())
	}
	if order.Equal(stamped) {
		t.Fatal("orders with different ids must not be equal")
	}
}
