package domain

import "errors"

var (
	// ErrInvalidConfiguration — общий вид ошибок сборки заказа.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// Ошибка отсутствующей базы напитка.
	ErrMissingBase = errors.New("missing required field: base")
	// Ошибка базы, которой нет в меню.
	ErrUnsupportedBase = errors.New("unsupported base")
	// Ошибка отрицательного количества сахара.
	ErrNegativeSugar = errors.New("sugar must be non-negative")
	// Ошибка пустого названия сиропа.
	ErrEmptySyrup = errors.New("syrup name must not be empty")

	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderAlreadyExists — заказ с таким ID уже сохранён.
	ErrOrderAlreadyExists = errors.New("order already exists")
	// ErrPublishFailed — событие заказа не удалось опубликовать.
	ErrPublishFailed = errors.New("order event publish failed")
)

// ConfigError описывает ошибку конкретного поля при сборке заказа.
// errors.Is срабатывает и на ErrInvalidConfiguration, и на конкретную причину.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func newConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{Field: field, Value: value, Err: err}
}

func (e *ConfigError) Error() string {
	msg := ErrInvalidConfiguration.Error() + ": " + e.Err.Error()
	if e.Value != "" {
		msg += " (" + e.Field + "=" + e.Value + ")"
	}
	return msg
}

func (e *ConfigError) Unwrap() []error {
	return []error{ErrInvalidConfiguration, e.Err}
}

// IsInvalidConfiguration проверяет, является ли ошибка ошибкой конфигурации заказа.
func IsInvalidConfiguration(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}
