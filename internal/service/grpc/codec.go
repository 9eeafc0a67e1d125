package grpcsvc

import (
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vladislavdragonenkov/barista/internal/domain"
	"github.com/vladislavdragonenkov/barista/internal/service/barista"
)

// Поля сообщений coffee.v1.
const (
	fieldOrderID     = "order_id"
	fieldID          = "id"
	fieldBase        = "base"
	fieldSize        = "size"
	fieldMilk        = "milk"
	fieldSyrups      = "syrups"
	fieldSugar       = "sugar"
	fieldIced        = "iced"
	fieldPriceMinor  = "price_minor"
	fieldPrice       = "price"
	fieldDescription = "description"
	fieldCreatedAt   = "created_at"
	fieldPublished   = "event_published"
	fieldLimit       = "limit"
	fieldOrders      = "orders"
)

func requestToStruct(req barista.OrderRequest) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldBase:   req.Base,
		fieldSize:   req.Size,
		fieldMilk:   req.Milk,
		fieldSyrups: stringsToAny(req.Syrups),
		fieldSugar:  req.Sugar,
		fieldIced:   req.Iced,
	})
}

func requestFromStruct(in *structpb.Struct) (barista.OrderRequest, error) {
	var req barista.OrderRequest
	fields := in.GetFields()

	var err error
	if req.Base, err = stringField(fields, fieldBase); err != nil {
		return req, err
	}
	if req.Size, err = stringField(fields, fieldSize); err != nil {
		return req, err
	}
	if req.Milk, err = stringField(fields, fieldMilk); err != nil {
		return req, err
	}
	if req.Sugar, err = intField(fields, fieldSugar); err != nil {
		return req, err
	}

	if v, ok := fields[fieldIced]; ok {
		b, isBool := v.GetKind().(*structpb.Value_BoolValue)
		if !isBool {
			return req, fmt.Errorf("%s must be a bool", fieldIced)
		}
		req.Iced = b.BoolValue
	}

	if v, ok := fields[fieldSyrups]; ok {
		list, isList := v.GetKind().(*structpb.Value_ListValue)
		if !isList {
			return req, fmt.Errorf("%s must be a list of strings", fieldSyrups)
		}
		for idx, item := range list.ListValue.GetValues() {
			s, isString := item.GetKind().(*structpb.Value_StringValue)
			if !isString {
				return req, fmt.Errorf("%s[%d] must be a string", fieldSyrups, idx)
			}
			req.Syrups = append(req.Syrups, s.StringValue)
		}
	}

	return req, nil
}

func orderToStruct(order domain.Order) (*structpb.Struct, error) {
	m := map[string]any{
		fieldBase:        order.Base(),
		fieldSize:        order.Size(),
		fieldMilk:        order.Milk(),
		fieldSyrups:      stringsToAny(order.Syrups()),
		fieldSugar:       order.Sugar(),
		fieldIced:        order.Iced(),
		fieldPriceMinor:  order.PriceMinor(),
		fieldPrice:       domain.FormatMinor(order.PriceMinor()),
		fieldDescription: order.Description(),
	}
	if order.ID() != "" {
		m[fieldID] = order.ID()
	}
	if !order.CreatedAt().IsZero() {
		m[fieldCreatedAt] = order.CreatedAt().UTC().Format(time.RFC3339Nano)
	}
	return structpb.NewStruct(m)
}

func orderFromStruct(in *structpb.Struct) (domain.Order, error) {
	fields := in.GetFields()
	rec := domain.OrderRecord{Syrups: []string{}}

	var err error
	for name, dst := range map[string]*string{
		fieldID:   &rec.ID,
		fieldBase: &rec.Base,
		fieldSize: &rec.Size,
		fieldMilk: &rec.Milk,
	} {
		if *dst, err = stringField(fields, name); err != nil {
			return domain.Order{}, err
		}
	}
	if rec.Sugar, err = intField(fields, fieldSugar); err != nil {
		return domain.Order{}, err
	}
	rec.Iced = fields[fieldIced].GetBoolValue()

	price := fields[fieldPriceMinor].GetNumberValue()
	if price != math.Trunc(price) {
		return domain.Order{}, fmt.Errorf("%s must be an integer", fieldPriceMinor)
	}
	rec.PriceMinor = int64(price)

	for _, item := range fields[fieldSyrups].GetListValue().GetValues() {
		rec.Syrups = append(rec.Syrups, item.GetStringValue())
	}

	if raw := fields[fieldCreatedAt].GetStringValue(); raw != "" {
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return domain.Order{}, fmt.Errorf("parse %s: %w", fieldCreatedAt, err)
		}
	}

	return domain.RestoreOrder(rec), nil
}

func stringField(fields map[string]*structpb.Value, name string) (string, error) {
	v, ok := fields[name]
	if !ok {
		return "", nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return kind.StringValue, nil
	case *structpb.Value_NullValue:
		return "", nil
	default:
		return "", fmt.Errorf("%s must be a string", name)
	}
}

func intField(fields map[string]*structpb.Value, name string) (int, error) {
	v, ok := fields[name]
	if !ok {
		return 0, nil
	}
	n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	if n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > math.MaxInt32 {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return int(n.NumberValue), nil
}

func stringsToAny(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
