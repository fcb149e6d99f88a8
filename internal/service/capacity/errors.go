package capacity

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("capacity: slot not found")

	// ErrSlotUnavailable возвращается при попытке занять место в неактивном слоте
	ErrSlotUnavailable = errors.New("capacity: slot is not active")

	// ErrCapacityExceeded возвращается, когда свободных мест нет
	ErrCapacityExceeded = errors.New("capacity: no remaining capacity")

	// ErrInternal возвращается при неустранимой ошибке хранилища
	ErrInternal = errors.New("capacity: internal error")
)
