package valueobject

import "fmt"

// LockKeyPrefix namespaces per-SKU lock keys in the shared cache.
const LockKeyPrefix = "inventory:lock:"

// LockKeyForSKU builds the distributed lock key for a SKU, per spec.md §6.
func LockKeyForSKU(sku string) string {
	return fmt.Sprintf("%s%s", LockKeyPrefix, sku)
}

// DefaultLockTTLMillis is the upper bound on combined store-update and
// event-publish latency a single critical section may take.
const DefaultLockTTLMillis = 5000
