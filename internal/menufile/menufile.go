// Package menufile загружает прайс-лист кофейни из YAML.
//
// Цены в файле указываются в основных единицах с точностью до копеек:
//
//	bases:
//	  latte: 300.00
//	  mocha: 340.50
//	sizes:
//	  - {name: small, surcharge: 0}
//	  - {name: large, surcharge: 100}
//	milks:
//	  oat: 60
//	syrup: 40
//	iced: 50
//
// Отсутствующие разделы берутся из domain.DefaultMenu.
package menufile

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vladislavdragonenkov/barista/internal/domain"
)

// File — YAML-представление меню.
type File struct {
	Bases       map[string]float64 `yaml:"bases"`
	Sizes       []SizeEntry        `yaml:"sizes"`
	Milks       map[string]float64 `yaml:"milks"`
	DefaultBase *float64           `yaml:"default_base"`
	DefaultMilk *float64           `yaml:"default_milk"`
	Syrup       *float64           `yaml:"syrup"`
	Sugar       *float64           `yaml:"sugar"`
	Iced        *float64           `yaml:"iced"`
}

type SizeEntry struct {
	Name      string  `yaml:"name"`
	Surcharge float64 `yaml:"surcharge"`
}

// Load читает файл меню. Пустой путь означает стандартное меню.
func Load(path string) (domain.Menu, error) {
	if strings.TrimSpace(path) == "" {
		return domain.DefaultMenu(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Menu{}, fmt.Errorf("read menu file: %w", err)
	}
	menu, err := Parse(data)
	if err != nil {
		return domain.Menu{}, fmt.Errorf("menu file %s: %w", path, err)
	}
	return menu, nil
}

// Parse разбирает YAML и накладывает его на стандартное меню.
func Parse(data []byte) (domain.Menu, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return domain.Menu{}, fmt.Errorf("failed to unmarshal menu: %w", err)
	}

	menu := domain.DefaultMenu()
	if len(file.Bases) > 0 {
		menu.Bases = toMinorMap(file.Bases)
	}
	if len(file.Sizes) > 0 {
		menu.Sizes = make([]domain.SizeOption, 0, len(file.Sizes))
		for _, s := range file.Sizes {
			menu.Sizes = append(menu.Sizes, domain.SizeOption{
				Name:           normalize(s.Name),
				SurchargeMinor: toMinor(s.Surcharge),
			})
		}
	}
	if len(file.Milks) > 0 {
		menu.Milks = toMinorMap(file.Milks)
		if _, ok := menu.Milks[domain.MilkNone]; !ok {
			menu.Milks[domain.MilkNone] = 0
		}
	}

	setMinor(&menu.DefaultBasePriceMinor, file.DefaultBase)
	setMinor(&menu.DefaultMilkPriceMinor, file.DefaultMilk)
	setMinor(&menu.SyrupPriceMinor, file.Syrup)
	setMinor(&menu.SugarPriceMinor, file.Sugar)
	setMinor(&menu.IcedSurchargeMinor, file.Iced)

	if err := menu.Validate(); err != nil {
		return domain.Menu{}, err
	}
	return menu, nil
}

// Marshal сериализует меню обратно в YAML (используется coffeectl menu --yaml).
func Marshal(menu domain.Menu) ([]byte, error) {
	file := File{
		Bases:       toMajorMap(menu.Bases),
		Milks:       toMajorMap(menu.Milks),
		DefaultBase: ptr(toMajor(menu.DefaultBasePriceMinor)),
		DefaultMilk: ptr(toMajor(menu.DefaultMilkPriceMinor)),
		Syrup:       ptr(toMajor(menu.SyrupPriceMinor)),
		Sugar:       ptr(toMajor(menu.SugarPriceMinor)),
		Iced:        ptr(toMajor(menu.IcedSurchargeMinor)),
	}
	for _, s := range menu.Sizes {
		file.Sizes = append(file.Sizes, SizeEntry{Name: s.Name, Surcharge: toMajor(s.SurchargeMinor)})
	}
	return yaml.Marshal(file)
}

func toMinor(v float64) int64 { return int64(math.Round(v * 100)) }

func toMajor(v int64) float64 { return float64(v) / 100 }

func toMinorMap(src map[string]float64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for name, price := range src {
		dst[normalize(name)] = toMinor(price)
	}
	return dst
}

func toMajorMap(src map[string]int64) map[string]float64 {
	dst := make(map[string]float64, len(src))
	for name, price := range src {
		dst[name] = toMajor(price)
	}
	return dst
}

func setMinor(dst *int64, v *float64) {
	if v != nil {
		*dst = toMinor(*v)
	}
}

func ptr(v float64) *float64 { return &v }

func normalize(v string) string { return strings.ToLower(strings.TrimSpace(v)) }
