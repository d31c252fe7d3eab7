package postgres

import (
	"encoding/json"
	"fmt"

	"rentledger/internal/infra/persistence/memory"
)

func decodeBucket(snapshot *memory.Snapshot, bucket string, payload []byte) bool {
	var err error
	switch bucket {
	case "rentals_properties":
		err = json.Unmarshal(payload, &snapshot.Properties)
	case "rentals_tenants":
		err = json.Unmarshal(payload, &snapshot.Tenants)
	case "rentals_agreements":
		err = json.Unmarshal(payload, &snapshot.Agreements)
	case "rentals_invoices":
		err = json.Unmarshal(payload, &snapshot.Invoices)
	case "rentals_payments":
		err = json.Unmarshal(payload, &snapshot.Payments)
	case "rentals_expenses":
		err = json.Unmarshal(payload, &snapshot.Expenses)
	case "rentals_maintenance":
		err = json.Unmarshal(payload, &snapshot.Maintenance)
	default:
		return false
	}
	return err == nil
}

func encodeBucket(snapshot memory.Snapshot, bucket string) ([]byte, error) {
	switch bucket {
	case "rentals_properties":
		return json.Marshal(snapshot.Properties)
	case "rentals_tenants":
		return json.Marshal(snapshot.Tenants)
	case "rentals_agreements":
		return json.Marshal(snapshot.Agreements)
	case "rentals_invoices":
		return json.Marshal(snapshot.Invoices)
	case "rentals_payments":
		return json.Marshal(snapshot.Payments)
	case "rentals_expenses":
		return json.Marshal(snapshot.Expenses)
	case "rentals_maintenance":
		return json.Marshal(snapshot.Maintenance)
	}
	return nil, fmt.Errorf("unknown bucket %s", bucket)
}
