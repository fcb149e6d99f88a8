package create_booking

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("create_booking: slot not found")

	// ErrSlotUnavailable возвращается при бронировании неактивного слота
	ErrSlotUnavailable = errors.New("create_booking: slot is not available")

	// ErrCapacityExceeded возвращается, когда в слоте нет свободных мест
	ErrCapacityExceeded = errors.New("create_booking: slot capacity exceeded")

	// ErrOverlappingBooking возвращается, когда у клиента уже есть
	// активное бронирование, пересекающееся по времени с запрошенным
	ErrOverlappingBooking = errors.New("create_booking: client already has an overlapping booking")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
