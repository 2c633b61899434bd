package application

import "reflect"

// ValueChange is one status value transition between two polls.
type ValueChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// ChangeSet maps device id to the status codes whose values changed between
// two successive batches. Derived on every poll, never cached.
type ChangeSet map[string]map[string]ValueChange

// DetectChanges compares newBatch against oldBatch and reports, per device,
// every status code whose value differs. Only devices and codes present in
// both batches are compared: with no baseline there is nothing to report, so
// the first poll always yields an empty set.
func DetectChanges(newBatch, oldBatch SnapshotBatch) ChangeSet {
	changes := ChangeSet{}

	for _, snapshot := range newBatch {
		previous, ok := oldBatch.Find(snapshot.ID)
		if !ok {
			continue
		}

		oldValues := make(map[string]any, len(previous.Status))
		for _, entry := range previous.Status {
			oldValues[entry.Code] = entry.Value
		}

		for _, entry := range snapshot.Status {
			oldValue, ok := oldValues[entry.Code]
			if !ok {
				continue
			}

			if !reflect.DeepEqual(oldValue, entry.Value) {
				if changes[snapshot.ID] == nil {
					changes[snapshot.ID] = map[string]ValueChange{}
				}
				changes[snapshot.ID][entry.Code] = ValueChange{Old: oldValue, New: entry.Value}
			}
		}
	}

	return changes
}
