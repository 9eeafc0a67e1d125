package domain

import (
	"errors"
	"strconv"
	"strings"
)

// OrderBuilder накапливает параметры напитка через цепочку вызовов и собирает Order.
//
// Каждый сеттер изменяет этот же экземпляр и возвращает его. Ошибки сеттеров
// (отрицательный сахар, неизвестная база) фиксируются сразу в момент вызова,
// доступны через Err и возвращаются из Build.
//
// OrderBuilder не потокобезопасен: при совместном использовании из нескольких
// горутин нужна внешняя синхронизация.
type OrderBuilder struct {
	menu Menu

	base   string
	size   string
	milk   string
	syrups []string
	sugar  int
	iced   bool

	errs []error
}

// NewOrderBuilder создаёт builder со стандартным меню.
func NewOrderBuilder() *OrderBuilder {
	return NewOrderBuilderWithMenu(DefaultMenu())
}

// NewOrderBuilderWithMenu создаёт builder, который считает цену по переданному меню.
func NewOrderBuilderWithMenu(menu Menu) *OrderBuilder {
	b := &OrderBuilder{menu: menu}
	b.Reset()
	return b
}

// SetBase задаёт базовый напиток. База должна быть в меню.
func (b *OrderBuilder) SetBase(base string) *OrderBuilder {
	name := normalizeName(base)
	switch {
	case name == "":
		b.errs = append(b.errs, newConfigError("base", "", ErrMissingBase))
	case !b.menu.HasBase(name):
		b.errs = append(b.errs, newConfigError("base", name, ErrUnsupportedBase))
	default:
		b.base = name
	}
	return b
}

// SetSize задаёт размер. Значение принимается как есть; неизвестный размер не даёт надбавки.
func (b *OrderBuilder) SetSize(size string) *OrderBuilder {
	if name := normalizeName(size); name != "" {
		b.size = name
	}
	return b
}

// SetMilk задаёт вид молока; "none" или пустая строка — без молока.
func (b *OrderBuilder) SetMilk(milk string) *OrderBuilder {
	b.milk = normalizeName(milk)
	if b.milk == "" {
		b.milk = MilkNone
	}
	return b
}

// AddSyrup добавляет сироп в конец списка. Повторы сохраняются.
func (b *OrderBuilder) AddSyrup(syrup string) *OrderBuilder {
	name := normalizeName(syrup)
	if name == "" {
		b.errs = append(b.errs, newConfigError("syrup", "", ErrEmptySyrup))
		return b
	}
	b.syrups = append(b.syrups, name)
	return b
}

// SetSugar задаёт количество ложек сахара. Отрицательное значение отклоняется,
// прежнее значение сохраняется.
func (b *OrderBuilder) SetSugar(teaspoons int) *OrderBuilder {
	if teaspoons < 0 {
		b.errs = append(b.errs, newConfigError("sugar", strconv.Itoa(teaspoons), ErrNegativeSugar))
		return b
	}
	b.sugar = teaspoons
	return b
}

func (b *OrderBuilder) SetIced(iced bool) *OrderBuilder {
	b.iced = iced
	return b
}

// ClearExtras сбрасывает молоко, сиропы, сахар и лёд. База и размер остаются.
func (b *OrderBuilder) ClearExtras() *OrderBuilder {
	b.milk = MilkNone
	b.syrups = nil
	b.sugar = 0
	b.iced = false
	return b
}

// Reset возвращает builder в исходное состояние, включая накопленные ошибки.
func (b *OrderBuilder) Reset() *OrderBuilder {
	b.base = ""
	b.size = DefaultSize
	b.errs = nil
	return b.ClearExtras()
}

// Err возвращает ошибки, накопленные сеттерами, или nil.
func (b *OrderBuilder) Err() error {
	return errors.Join(b.errs...)
}

// Build проверяет накопленное состояние, считает цену и возвращает новый Order.
// Builder после сборки можно продолжать менять: на готовый заказ это не влияет.
func (b *OrderBuilder) Build() (Order, error) {
	if err := b.Err(); err != nil {
		return Order{}, err
	}
	if b.base == "" {
		return Order{}, newConfigError("base", "", ErrMissingBase)
	}

	order := Order{
		base:   b.base,
		size:   b.size,
		milk:   b.milk,
		syrups: cloneStrings(b.syrups),
		sugar:  b.sugar,
		iced:   b.iced,
	}
	order.priceMinor = b.menu.Quote(order.Selection())
	return order, nil
}

func normalizeName(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
