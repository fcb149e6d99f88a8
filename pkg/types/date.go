package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DateFormat формат даты YYYY-MM-DD
const DateFormat = "2006-01-02"

// ErrInvalidDate возвращается при некорректном формате даты
var ErrInvalidDate = errors.New("invalid date format, expected YYYY-MM-DD")

// Date календарная дата в формате "YYYY-MM-DD" без времени и таймзоны
type Date string

// NewDate создает Date из time.Time (отбрасывает время)
func NewDate(t time.Time) Date {
	return Date(t.Format(DateFormat))
}

// NewDateFromString парсит строку "YYYY-MM-DD" в Date
func NewDateFromString(s string) (Date, error) {
	d := Date(s)
	if err := d.Validate(); err != nil {
		return "", err
	}
	return d, nil
}

// String возвращает строковое представление даты
func (d Date) String() string {
	return string(d)
}

// IsZero возвращает true, если дата не задана
func (d Date) IsZero() bool {
	return d == ""
}

// Validate проверяет, что дата соответствует формату YYYY-MM-DD
func (d Date) Validate() error {
	if _, err := time.Parse(DateFormat, string(d)); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Time конвертирует дату в time.Time (полночь UTC)
func (d Date) Time() (time.Time, error) {
	t, err := time.Parse(DateFormat, string(d))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// Value реализует driver.Valuer для записи в БД
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return string(d), nil
}

// Scan реализует sql.Scanner для чтения из БД
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = ""
		return nil
	case string:
		*d = Date(v)
		return d.Validate()
	case []byte:
		*d = Date(v)
		return d.Validate()
	case time.Time:
		*d = NewDate(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

// MarshalJSON реализует json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(d))
}

// UnmarshalJSON реализует json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = Date(s)
	return nil
}
