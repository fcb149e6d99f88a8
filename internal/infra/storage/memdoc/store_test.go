package memdoc

import (
	"testing"

	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/storetest"
)

func TestSlotStore_Contract(t *testing.T) {
	storetest.RunSlotStoreSuite(t, func(t *testing.T) storage.SlotStore {
		return NewSlotStore()
	})
}

func TestBookingStore_Contract(t *testing.T) {
	storetest.RunBookingStoreSuite(t, func(t *testing.T) storage.BookingStore {
		return NewBookingStore()
	})
}
