package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Базовые напитки стандартного меню.
const (
	BaseEspresso   = "espresso"
	BaseAmericano  = "americano"
	BaseLatte      = "latte"
	BaseCappuccino = "cappuccino"
)

// Размеры стандартного меню, от меньшего к большему.
const (
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"

	// DefaultSize применяется, если размер не задан явно.
	DefaultSize = SizeMedium
)

// MilkNone означает напиток без молока.
const MilkNone = "none"

// SizeOption — размер порции и надбавка к цене за него.
type SizeOption struct {
	Name           string
	SurchargeMinor int64
}

// Menu — прайс-лист, по которому считается стоимость заказа.
// Все суммы хранятся в минимальных денежных единицах (копейки/центы).
type Menu struct {
	// Bases — цена базового напитка по его идентификатору.
	Bases map[string]int64
	// Sizes упорядочены от меньшего к большему; надбавка строго растёт.
	Sizes []SizeOption
	// Milks — надбавка за вид молока; "none" и пустое значение бесплатны.
	Milks map[string]int64

	// DefaultBasePriceMinor используется для базы, которой нет в прайсе.
	DefaultBasePriceMinor int64
	// DefaultMilkPriceMinor используется для неизвестного вида молока.
	DefaultMilkPriceMinor int64

	SyrupPriceMinor    int64
	SugarPriceMinor    int64
	IcedSurchargeMinor int64
}

// DefaultMenu возвращает стандартный прайс-лист кофейни.
func DefaultMenu() Menu {
	return Menu{
		Bases: map[string]int64{
			BaseEspresso:   20000,
			BaseAmericano:  25000,
			BaseLatte:      30000,
			BaseCappuccino: 32000,
		},
		Sizes: []SizeOption{
			{Name: SizeSmall, SurchargeMinor: 0},
			{Name: SizeMedium, SurchargeMinor: 5000},
			{Name: SizeLarge, SurchargeMinor: 10000},
		},
		Milks: map[string]int64{
			MilkNone: 0,
			"whole":  3000,
			"skim":   3000,
			"soy":    5000,
			"oat":    6000,
			"almond": 6000,
		},
		DefaultBasePriceMinor: 25000,
		DefaultMilkPriceMinor: 3000,
		SyrupPriceMinor:       4000,
		SugarPriceMinor:       0,
		IcedSurchargeMinor:    5000,
	}
}

// Selection — набор параметров напитка, по которому считается цена.
type Selection struct {
	Base   string
	Size   string
	Milk   string
	Syrups []string
	Sugar  int
	Iced   bool
}

// HasBase сообщает, есть ли база в прайс-листе.
func (m Menu) HasBase(base string) bool {
	_, ok := m.Bases[base]
	return ok
}

// BaseNames возвращает отсортированный список баз меню.
func (m Menu) BaseNames() []string {
	names := make([]string, 0, len(m.Bases))
	for name := range m.Bases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MilkNames возвращает отсортированный список видов молока меню.
func (m Menu) MilkNames() []string {
	names := make([]string, 0, len(m.Milks))
	for name := range m.Milks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BasePriceMinor возвращает цену базы, для неизвестной базы — цену по умолчанию.
func (m Menu) BasePriceMinor(base string) int64 {
	if price, ok := m.Bases[base]; ok {
		return price
	}
	return m.DefaultBasePriceMinor
}

// SizeSurchargeMinor возвращает надбавку за размер; неизвестный размер бесплатен.
func (m Menu) SizeSurchargeMinor(size string) int64 {
	for _, opt := range m.Sizes {
		if opt.Name == size {
			return opt.SurchargeMinor
		}
	}
	return 0
}

// MilkSurchargeMinor возвращает надбавку за молоко.
func (m Menu) MilkSurchargeMinor(milk string) int64 {
	if milk == "" || milk == MilkNone {
		return 0
	}
	if price, ok := m.Milks[milk]; ok {
		return price
	}
	return m.DefaultMilkPriceMinor
}

// Quote считает стоимость напитка. Функция чистая: одинаковый выбор даёт одинаковую цену.
func (m Menu) Quote(sel Selection) int64 {
	total := m.BasePriceMinor(sel.Base)
	total += m.SizeSurchargeMinor(sel.Size)
	total += m.MilkSurchargeMinor(sel.Milk)
	total += int64(len(sel.Syrups)) * m.SyrupPriceMinor
	if sel.Sugar > 0 {
		total += int64(sel.Sugar) * m.SugarPriceMinor
	}
	if sel.Iced {
		total += m.IcedSurchargeMinor
	}
	if total < 0 {
		return 0
	}
	return total
}

// Validate проверяет прайс-лист: неотрицательные цены и строго растущие надбавки за размер.
func (m Menu) Validate() error {
	var errs []error

	if len(m.Bases) == 0 {
		errs = append(errs, errors.New("menu must contain at least one base"))
	}
	for name, price := range m.Bases {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, errors.New("base name must not be empty"))
		}
		if price < 0 {
			errs = append(errs, fmt.Errorf("base %q: price must be non-negative", name))
		}
	}
	for name, price := range m.Milks {
		if price < 0 {
			errs = append(errs, fmt.Errorf("milk %q: price must be non-negative", name))
		}
	}

	seen := make(map[string]struct{}, len(m.Sizes))
	for i, opt := range m.Sizes {
		if opt.Name == "" {
			errs = append(errs, fmt.Errorf("size[%d]: name must not be empty", i))
		}
		if _, dup := seen[opt.Name]; dup {
			errs = append(errs, fmt.Errorf("size %q is listed twice", opt.Name))
		}
		seen[opt.Name] = struct{}{}
		if opt.SurchargeMinor < 0 {
			errs = append(errs, fmt.Errorf("size %q: surcharge must be non-negative", opt.Name))
		}
		if i > 0 && opt.SurchargeMinor <= m.Sizes[i-1].SurchargeMinor {
			errs = append(errs, fmt.Errorf("size %q must cost more than %q", opt.Name, m.Sizes[i-1].Name))
		}
	}

	if m.DefaultBasePriceMinor < 0 || m.DefaultMilkPriceMinor < 0 {
		errs = append(errs, errors.New("default prices must be non-negative"))
	}
	if m.SyrupPriceMinor <= 0 {
		errs = append(errs, errors.New("syrup price must be positive"))
	}
	if m.SugarPriceMinor < 0 || m.IcedSurchargeMinor < 0 {
		errs = append(errs, errors.New("sugar and iced surcharges must be non-negative"))
	}

	return errors.Join(errs...)
}

// FormatMinor печатает сумму в минимальных единицах с двумя знаками после точки.
func FormatMinor(amountMinor int64) string {
	sign := ""
	if amountMinor < 0 {
		sign = "-"
		amountMinor = -amountMinor
	}
	return fmt.Sprintf("%s%d.%02d", sign, amountMinor/100, amountMinor%100)
}
