package domain

import (
	"fmt"
	"strings"
	"time"
)

// Order — готовый заказ. Значение неизменяемо: поля закрыты, аксессоры отдают копии,
// цена посчитана один раз при сборке и больше не пересчитывается.
type Order struct {
	id         string
	base       string
	size       string
	milk       string
	syrups     []string
	sugar      int
	iced       bool
	priceMinor int64
	createdAt  time.Time
}

// OrderRecord — плоское представление заказа для хранилищ и событий.
type OrderRecord struct {
	ID         string
	Base       string
	Size       string
	Milk       string
	Syrups     []string
	Sugar      int
	Iced       bool
	PriceMinor int64
	CreatedAt  time.Time
}

// RestoreOrder восстанавливает заказ из записи хранилища. Цена берётся из записи как есть.
func RestoreOrder(rec OrderRecord) Order {
	return Order{
		id:         rec.ID,
		base:       rec.Base,
		size:       rec.Size,
		milk:       rec.Milk,
		syrups:     cloneStrings(rec.Syrups),
		sugar:      rec.Sugar,
		iced:       rec.Iced,
		priceMinor: rec.PriceMinor,
		createdAt:  rec.CreatedAt,
	}
}

// Snapshot возвращает копию заказа в виде записи.
func (o Order) Snapshot() OrderRecord {
	return OrderRecord{
		ID:         o.id,
		Base:       o.base,
		Size:       o.size,
		Milk:       o.milk,
		Syrups:     cloneStrings(o.syrups),
		Sugar:      o.sugar,
		Iced:       o.iced,
		PriceMinor: o.priceMinor,
		CreatedAt:  o.createdAt,
	}
}

func (o Order) ID() string           { return o.id }
func (o Order) Base() string         { return o.base }
func (o Order) Size() string         { return o.size }
func (o Order) Milk() string         { return o.milk }
func (o Order) Sugar() int           { return o.sugar }
func (o Order) Iced() bool           { return o.iced }
func (o Order) PriceMinor() int64    { return o.priceMinor }
func (o Order) CreatedAt() time.Time { return o.createdAt }

// Syrups возвращает копию списка сиропов в порядке добавления.
func (o Order) Syrups() []string { return cloneStrings(o.syrups) }

// HasMilk сообщает, добавлено ли в напиток молоко.
func (o Order) HasMilk() bool { return o.milk != "" && o.milk != MilkNone }

// Price возвращает цену в основных денежных единицах с точностью до двух знаков.
func (o Order) Price() float64 { return float64(o.priceMinor) / 100 }

// Selection возвращает параметры напитка для повторного расчёта по другому меню.
func (o Order) Selection() Selection {
	return Selection{
		Base:   o.base,
		Size:   o.size,
		Milk:   o.milk,
		Syrups: cloneStrings(o.syrups),
		Sugar:  o.sugar,
		Iced:   o.iced,
	}
}

// WithID возвращает копию заказа с проставленным идентификатором.
func (o Order) WithID(id string) Order {
	o.syrups = cloneStrings(o.syrups)
	o.id = id
	return o
}

// WithCreatedAt возвращает копию заказа с временем создания.
func (o Order) WithCreatedAt(t time.Time) Order {
	o.syrups = cloneStrings(o.syrups)
	o.createdAt = t
	return o
}

// Equal сравнивает заказы по всем полям, включая цену.
func (o Order) Equal(other Order) bool {
	if o.id != other.id || o.base != other.base || o.size != other.size || o.milk != other.milk {
		return false
	}
	if o.sugar != other.sugar || o.iced != other.iced || o.priceMinor != other.priceMinor {
		return false
	}
	if !o.createdAt.Equal(other.createdAt) || len(o.syrups) != len(other.syrups) {
		return false
	}
	for i := range o.syrups {
		if o.syrups[i] != other.syrups[i] {
			return false
		}
	}
	return true
}

// Description — описание напитка для чека, например
// "large latte with oat milk + caramel syrup (iced) 3 tsps sugar".
func (o Order) Description() string {
	parts := []string{o.size + " " + o.base}
	if o.HasMilk() {
		parts = append(parts, "with "+o.milk+" milk")
	}
	if len(o.syrups) > 0 {
		parts = append(parts, "+ "+strings.Join(o.syrups, ", ")+" syrup")
	}
	if o.iced {
		parts = append(parts, "(iced)")
	}
	if o.sugar > 0 {
		unit := "tsps"
		if o.sugar == 1 {
			unit = "tsp"
		}
		parts = append(parts, fmt.Sprintf("%d %s sugar", o.sugar, unit))
	}
	return strings.Join(parts, " ")
}

// String печатает все параметры заказа и цену в стабильном формате.
func (o Order) String() string {
	return fmt.Sprintf("%s size=%s milk=%s syrups=[%s] sugar=%d iced=%t price=%s",
		o.base, o.size, o.milk, strings.Join(o.syrups, ","), o.sugar, o.iced, FormatMinor(o.priceMinor))
}

func cloneStrings(src []string) []string {
	if len(src) == 0 {
		return []string{}
	}
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}
