package core

import (
	"context"

	"rentledger/pkg/domain"
)

// InitializeSampleData seeds two example properties when the property
// collection is empty. Re-running against a populated ledger is a no-op, so
// the bootstrap is safe to call on every startup.
func (s *Service) InitializeSampleData(ctx context.Context) error {
	return s.run(ctx, "seed_sample_data", EntityProperty, func(tx Transaction) error {
		if len(tx.Snapshot().ListProperties()) > 0 {
			return nil
		}
		samples := []Property{
			{
				HouseNumber: "A001",
				Location:    "Kampala Central",
				Type:        "Apartment",
				Size:        2,
				RentRate:    800000,
				Status:      domain.PropertyOccupied,
				Utilities: &domain.Utilities{
					ElectricityMeter: "EM001",
					WaterAccount:     "WA001",
					BillingType:      domain.BillingPostpaid,
				},
			},
			{
				HouseNumber: "B002",
				Location:    "Ntinda",
				Type:        "House",
				Size:        3,
				RentRate:    1200000,
				Status:      domain.PropertyVacant,
				Utilities: &domain.Utilities{
					ElectricityMeter: "EM002",
					WaterAccount:     "WA002",
					BillingType:      domain.BillingPrepaid,
				},
			},
		}
		for _, sample := range samples {
			if _, err := tx.CreateProperty(sample); err != nil {
				return err
			}
		}
		return nil
	})
}
